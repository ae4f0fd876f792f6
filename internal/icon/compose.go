package icon

import (
	"image"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

const (
	// DefaultSize is the default icon edge length in pixels.
	DefaultSize = 32

	// MinSize and MaxSize bound the configurable icon size.
	MinSize = 16
	MaxSize = 256

	// minPadding is the smallest margin kept around the content.
	minPadding = 2
)

// Padding returns the margin added around box: 8% of its longer side,
// rounded down, and never less than 2 pixels.
func Padding(box model.BoundingBox) int {
	pad := box.MaxSide() * 8 / 100
	if pad < minPadding {
		return minPadding
	}
	return pad
}

// PaddedRegion expands box by Padding on every side and clamps the result to
// bounds, so the region never reaches outside the source raster.
func PaddedRegion(box model.BoundingBox, bounds image.Rectangle) image.Rectangle {
	pad := Padding(box)
	r := image.Rect(box.X-pad, box.Y-pad, box.X+box.W+pad, box.Y+box.H+pad)
	return r.Add(bounds.Min).Intersect(bounds)
}

// Compose crops src to the padded content box, letterboxes the crop into a
// transparent square and resamples it to size x size with nearest-neighbor
// filtering. When found is false the result is a fully transparent icon.
func Compose(src *image.RGBA, box model.BoundingBox, found bool, size int) *image.RGBA {
	if !found {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	region := PaddedRegion(box, src.Bounds())
	cw, ch := region.Dx(), region.Dy()
	if cw <= 0 || ch <= 0 {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	side := max(cw, ch)
	square := image.NewRGBA(image.Rect(0, 0, side, side))
	offX := (side - cw) / 2
	offY := (side - ch) / 2
	draw.Draw(square, image.Rect(offX, offY, offX+cw, offY+ch), src, region.Min, draw.Src)

	if side == size {
		return square
	}
	return transform.Resize(square, size, size, transform.NearestNeighbor)
}

// Process scans frame for content and composes it into a size x size icon.
func Process(frame *image.RGBA, size int) *image.RGBA {
	box, found := ContentBoundsOf(frame)
	return Compose(frame, box, found, size)
}
