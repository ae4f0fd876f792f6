package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
)

// ErrNotPNG is returned by LoadPNG when the file content is not a PNG image,
// regardless of its extension.
var ErrNotPNG = errors.New("not a PNG image")

// LoadPNG reads and decodes a PNG texture into an RGBA image whose bounds
// start at the origin.
func LoadPNG(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read texture: %w", err)
	}

	// Sniff the magic bytes before decoding so a mislabeled file gets a clear
	// error instead of a decoder message.
	if !filetype.Is(data, "png") {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPNG)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
