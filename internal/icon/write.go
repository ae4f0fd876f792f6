package icon

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// FileSuffix is appended to the output name of every icon file.
const FileSuffix = ".icon.png"

// FileName returns the icon file name for outputName.
func FileName(outputName string) string {
	return outputName + FileSuffix
}

// WritePNG encodes img as PNG to <dir>/<outputName>.icon.png and returns the
// written path. An existing file is replaced.
func WritePNG(dir, outputName string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode icon %s: %w", outputName, err)
	}

	path := filepath.Join(dir, FileName(outputName))
	if err := atomicwriter.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write icon to %s: %w", path, err)
	}
	return path, nil
}
