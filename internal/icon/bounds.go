package icon

import (
	"image"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

// AlphaThreshold is the alpha value a pixel must exceed to count as
// content. Values at or below it are treated as background noise.
const AlphaThreshold = 10

// ContentBounds scans a tightly packed RGBA buffer (4 bytes per pixel, row
// stride 4*width) and returns the smallest box enclosing every pixel whose
// alpha exceeds AlphaThreshold. The second result is false when the buffer
// has no such pixel.
func ContentBounds(pix []byte, width, height int) (model.BoundingBox, bool) {
	return scan(pix, width*4, width, height)
}

// ContentBoundsOf is ContentBounds for an *image.RGBA. The box is relative
// to img.Bounds().Min.
func ContentBoundsOf(img *image.RGBA) (model.BoundingBox, bool) {
	b := img.Bounds()
	if b.Empty() {
		return model.BoundingBox{}, false
	}
	start := img.PixOffset(b.Min.X, b.Min.Y)
	return scan(img.Pix[start:], img.Stride, b.Dx(), b.Dy())
}

func scan(pix []byte, stride, width, height int) (model.BoundingBox, bool) {
	minX, minY := width, height
	maxX, maxY := -1, -1

	for y := 0; y < height; y++ {
		row := pix[y*stride : y*stride+width*4]
		for x := 0; x < width; x++ {
			if row[x*4+3] <= AlphaThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < 0 {
		return model.BoundingBox{}, false
	}
	return model.BoundingBox{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}
