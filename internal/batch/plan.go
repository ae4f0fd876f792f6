package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/texture"
)

// ModelExt is the file suffix of model files.
const ModelExt = ".geo.json"

var (
	// ErrNoModelsFolder is returned when no models folder was given or the
	// given path does not exist.
	ErrNoModelsFolder = errors.New("no models folder")

	// ErrNoModels is returned when the models folder holds no model files.
	ErrNoModels = errors.New("no .geo.json files found")
)

// Options selects the folders and camera of a run.
type Options struct {
	// ModelsFolder is required. A file:// prefix is stripped and a path to
	// a file selects the directory containing it.
	ModelsFolder string

	// TexturesFolder defaults to <packRoot>/textures/blocks.
	TexturesFolder string

	// OutputFolder defaults to <packRoot>/textures/items.
	OutputFolder string

	// Preset is the camera preset every icon is rendered from.
	Preset model.CameraPreset
}

// Plan is the validated, fully resolved work of a run.
type Plan struct {
	ModelsDir   string             `json:"modelsDir"`
	PackRoot    string             `json:"packRoot"`
	TexturesDir string             `json:"texturesDir"`
	OutputDir   string             `json:"outputDir"`
	Preset      model.CameraPreset `json:"preset"`
	Jobs        []model.ModelJob   `json:"jobs"`
}

// TotalIcons returns the number of icons the plan will attempt.
func (p *Plan) TotalIcons() int {
	n := 0
	for _, job := range p.Jobs {
		n += len(job.Variants)
	}
	return n
}

// NewPlan discovers the models of opts.ModelsFolder and resolves every
// model's texture variants. It does not touch the filesystem beyond reads.
func NewPlan(opts Options) (*Plan, error) {
	// Step 1: Normalize the models folder.
	modelsDir, err := ResolveModelsDir(opts.ModelsFolder)
	if err != nil {
		return nil, err
	}

	// Step 2: Enumerate model files, non-recursively and sorted by name.
	modelFiles, err := listModels(modelsDir)
	if err != nil {
		return nil, err
	}
	if len(modelFiles) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoModels, modelsDir)
	}

	// Step 3: Derive the pack root and default folders from it.
	packRoot := PackRoot(modelsDir)
	texturesDir := opts.TexturesFolder
	if texturesDir == "" {
		texturesDir = DefaultTexturesDir(packRoot)
	}
	outputDir := opts.OutputFolder
	if outputDir == "" {
		outputDir = DefaultOutputDir(packRoot)
	}

	preset := opts.Preset
	if preset == "" {
		preset = model.DefaultCameraPreset
	}

	// Step 4: One job per model, each with its resolved variants.
	plan := &Plan{
		ModelsDir:   modelsDir,
		PackRoot:    packRoot,
		TexturesDir: texturesDir,
		OutputDir:   outputDir,
		Preset:      preset,
		Jobs:        make([]model.ModelJob, 0, len(modelFiles)),
	}
	for _, file := range modelFiles {
		name := strings.TrimSuffix(file, ModelExt)
		variants, err := texture.ResolveVariants(name, texturesDir)
		if err != nil {
			return nil, err
		}
		plan.Jobs = append(plan.Jobs, model.ModelJob{
			ModelName: name,
			ModelPath: filepath.Join(modelsDir, file),
			Variants:  variants,
		})
	}
	return plan, nil
}

// PackRoot returns the resource pack root for a models folder laid out as
// <packRoot>/models/<kind>.
func PackRoot(modelsDir string) string {
	return filepath.Dir(filepath.Dir(modelsDir))
}

// DefaultTexturesDir returns <packRoot>/textures/blocks.
func DefaultTexturesDir(packRoot string) string {
	return filepath.Join(packRoot, "textures", "blocks")
}

// DefaultOutputDir returns <packRoot>/textures/items.
func DefaultOutputDir(packRoot string) string {
	return filepath.Join(packRoot, "textures", "items")
}

// ResolveModelsDir turns the user-supplied models location into an absolute
// directory path.
func ResolveModelsDir(folder string) (string, error) {
	folder = strings.TrimPrefix(strings.TrimSpace(folder), "file://")
	if folder == "" {
		return "", ErrNoModelsFolder
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("failed to resolve models folder: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s does not exist", ErrNoModelsFolder, abs)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}

// listModels returns the names of the model files directly in dir. The
// suffix match is case-sensitive.
func listModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read models folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ModelExt) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}
