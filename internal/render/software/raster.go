package software

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// margin keeps the fitted model away from the frame edges.
const margin = 4

// faceShade darkens each side so cube edges stay visible without lighting.
var faceShade = [...]float32{
	FaceNorth: 0.8,
	FaceSouth: 0.8,
	FaceEast:  0.65,
	FaceWest:  0.65,
	FaceUp:    1.0,
	FaceDown:  0.5,
}

// untexturedColor is used for every face when no texture is bound.
var untexturedColor = color.NRGBA{R: 190, G: 190, B: 190, A: 255}

func sin(x float32) float32 { return float32(math.Sin(float64(x))) }
func cos(x float32) float32 { return float32(math.Cos(float64(x))) }

// screenVertex is a projected corner: pixel position, view-space depth
// (larger is closer) and texture coordinates in texels.
type screenVertex struct {
	x, y, z float32
	u, v    float32
}

// rasterizer draws quads into an RGBA frame with a depth buffer.
type rasterizer struct {
	frame *image.RGBA
	depth []float32
	size  int

	tex       *image.RGBA
	texScaleU float32
	texScaleV float32
}

func newRasterizer(size int, geo *Geometry, tex *image.RGBA) *rasterizer {
	r := &rasterizer{
		frame: image.NewRGBA(image.Rect(0, 0, size, size)),
		depth: make([]float32, size*size),
		size:  size,
		tex:   tex,
	}
	for i := range r.depth {
		r.depth[i] = float32(math.Inf(-1))
	}
	if tex != nil {
		r.texScaleU = float32(tex.Bounds().Dx()) / geo.TextureWidth
		r.texScaleV = float32(tex.Bounds().Dy()) / geo.TextureHeight
	}
	return r
}

// draw projects every quad of geo with view and fits the result into the
// frame with an orthographic projection.
func (r *rasterizer) draw(geo *Geometry, view mgl32.Mat4) {
	if len(geo.Quads) == 0 {
		return
	}

	viewQuads := make([][4]mgl32.Vec3, len(geo.Quads))
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for i, q := range geo.Quads {
		for j, c := range q.Corners {
			p := mgl32.TransformCoordinate(c, view)
			viewQuads[i][j] = p
			minX, maxX = min(minX, p.X()), max(maxX, p.X())
			minY, maxY = min(minY, p.Y()), max(maxY, p.Y())
		}
	}

	extent := max(maxX-minX, maxY-minY)
	if extent <= 0 {
		return
	}
	scale := float32(r.size-2*margin) / extent
	// Center the projected extents in the frame.
	offX := (float32(r.size) - (maxX-minX)*scale) / 2
	offY := (float32(r.size) - (maxY-minY)*scale) / 2

	for i, q := range geo.Quads {
		var sv [4]screenVertex
		texU := [4]float32{q.UV.U, q.UV.U + q.UV.W, q.UV.U + q.UV.W, q.UV.U}
		texV := [4]float32{q.UV.V, q.UV.V, q.UV.V + q.UV.H, q.UV.V + q.UV.H}
		for j, p := range viewQuads[i] {
			sv[j] = screenVertex{
				x: (p.X()-minX)*scale + offX,
				y: (maxY-p.Y())*scale + offY,
				z: p.Z(),
				u: texU[j] * r.texScaleU,
				v: texV[j] * r.texScaleV,
			}
		}
		shade := faceShade[q.Face]
		r.triangle(sv[0], sv[1], sv[2], shade)
		r.triangle(sv[0], sv[2], sv[3], shade)
	}
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// triangle fills a, b, c with depth testing, sampling pixel centers.
// Both windings are accepted; hidden faces lose the depth test.
func (r *rasterizer) triangle(a, b, c screenVertex, shade float32) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}

	x0 := clampInt(int(math.Floor(float64(min(a.x, b.x, c.x)))), 0, r.size-1)
	x1 := clampInt(int(math.Ceil(float64(max(a.x, b.x, c.x)))), 0, r.size-1)
	y0 := clampInt(int(math.Floor(float64(min(a.y, b.y, c.y)))), 0, r.size-1)
	y1 := clampInt(int(math.Ceil(float64(max(a.y, b.y, c.y)))), 0, r.size-1)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			px, py := float32(x)+0.5, float32(y)+0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			idx := y*r.size + x
			if z <= r.depth[idx] {
				continue
			}

			col, ok := r.sample(w0*a.u+w1*b.u+w2*c.u, w0*a.v+w1*b.v+w2*c.v)
			if !ok {
				continue
			}
			r.depth[idx] = z
			r.frame.SetRGBA(x, y, shaded(col, shade))
		}
	}
}

// sample returns the texel at (u, v). Fully transparent texels are cut out.
func (r *rasterizer) sample(u, v float32) (color.NRGBA, bool) {
	if r.tex == nil {
		return untexturedColor, true
	}
	b := r.tex.Bounds()
	tx := clampInt(int(math.Floor(float64(u))), 0, b.Dx()-1)
	ty := clampInt(int(math.Floor(float64(v))), 0, b.Dy()-1)
	c := r.tex.RGBAAt(b.Min.X+tx, b.Min.Y+ty)
	if c.A == 0 {
		return color.NRGBA{}, false
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n, true
}

func shaded(c color.NRGBA, shade float32) color.RGBA {
	// Premultiply while applying the shade.
	f := shade * float32(c.A) / 255
	return color.RGBA{
		R: uint8(float32(c.R) * f),
		G: uint8(float32(c.G) * f),
		B: uint8(float32(c.B) * f),
		A: c.A,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
