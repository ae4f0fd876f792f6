package texture

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

// Ext is the only texture file extension that is considered.
const Ext = ".png"

// ResolveVariants returns the texture variants for modelName found in
// texturesDir. The result is never empty: when no convention matches, a
// single untextured variant named after the model is returned.
//
// Rules are applied in order and their results concatenated:
//  1. <texturesDir>/<modelName>.png
//  2. every *.png in <texturesDir>/<modelName>/, sorted by filename
//  3. <texturesDir>/<modelName>*<digits>.png, sorted by filename
//
// A failure to read the variant subfolder is returned as an error. A failure
// to read texturesDir itself only means rule 3 matches nothing.
func ResolveVariants(modelName, texturesDir string) ([]model.TextureVariant, error) {
	var variants []model.TextureVariant

	// Rule 1: direct match.
	direct := filepath.Join(texturesDir, modelName+Ext)
	if isRegularFile(direct) {
		variants = append(variants, model.TextureVariant{
			SourcePath: direct,
			OutputName: modelName,
		})
	}

	// Rule 2: subfolder named after the model.
	subDir := filepath.Join(texturesDir, modelName)
	if info, err := os.Stat(subDir); err == nil && info.IsDir() {
		files, err := listPNGs(subDir, func(string) bool { return true })
		if err != nil {
			return nil, fmt.Errorf("failed to read texture variants in %s: %w", subDir, err)
		}
		for _, f := range files {
			variants = append(variants, model.TextureVariant{
				SourcePath: filepath.Join(subDir, f),
				OutputName: strings.TrimSuffix(f, Ext),
			})
		}
	}

	// Rule 3: numbered siblings. Read errors are treated as no matches.
	numbered, _ := listPNGs(texturesDir, func(stem string) bool {
		return IsNumberedVariant(modelName, stem)
	})
	for _, f := range numbered {
		variants = append(variants, model.TextureVariant{
			SourcePath: filepath.Join(texturesDir, f),
			OutputName: strings.TrimSuffix(f, Ext),
		})
	}

	if len(variants) == 0 {
		variants = append(variants, model.TextureVariant{OutputName: modelName})
	}
	return variants, nil
}

// IsNumberedVariant reports whether stem starts with modelName and ends
// with one or more ASCII digits. "door2", "door_2" and "door_oak3" are
// variants of "door"; "door" and "door2x" are not. Any model whose name is a
// prefix of another model's name also claims that model's numbered files.
func IsNumberedVariant(modelName, stem string) bool {
	if stem == modelName || !strings.HasPrefix(stem, modelName) {
		return false
	}
	last := stem[len(stem)-1]
	return last >= '0' && last <= '9'
}

// listPNGs returns the sorted names of the regular *.png files directly
// inside dir whose stem satisfies keep.
func listPNGs(dir string, keep func(stem string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Ext) {
			continue
		}
		if keep(strings.TrimSuffix(name, Ext)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
