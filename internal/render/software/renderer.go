package software

import (
	"context"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/render"
	"github.com/shinji-kodama/iconbatch/internal/texture"
)

const (
	// DefaultFrameSize is the edge length of rendered frames.
	DefaultFrameSize = 256

	// MinFrameSize and MaxFrameSize bound the configurable frame size.
	MinFrameSize = 64
	MaxFrameSize = 2048
)

// Renderer is a render.Renderer that rasterizes on the CPU.
type Renderer struct {
	frameSize int
}

var _ render.Renderer = (*Renderer)(nil)

// New returns a renderer producing square frames of frameSize pixels.
// A non-positive size selects DefaultFrameSize.
func New(frameSize int) *Renderer {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	return &Renderer{frameSize: frameSize}
}

// FrameSize returns the frame edge length.
func (r *Renderer) FrameSize() int {
	return r.frameSize
}

// Presets returns every preset in the renderer's table.
func (r *Renderer) Presets() []model.CameraPreset {
	out := make([]model.CameraPreset, 0, len(presetAngles))
	for _, p := range model.AllCameraPresets {
		if _, ok := presetAngles[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// NewSession returns an empty scene with the default camera.
func (r *Renderer) NewSession(context.Context) (render.Session, error) {
	angle, _ := PresetAngle(model.DefaultCameraPreset)
	return &Session{frameSize: r.frameSize, angle: angle}, nil
}

// Session holds the scene state of one run. All calls are synchronous, so
// state is always settled when they return.
type Session struct {
	frameSize    int
	geo          *Geometry
	tex          *image.RGBA
	angle        Angle
	orthographic bool
}

var _ render.Session = (*Session)(nil)

// LoadModel parses the model at path and clears the bound texture.
func (s *Session) LoadModel(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	geo, err := LoadGeometry(path)
	if err != nil {
		return err
	}
	s.geo = geo
	s.tex = nil
	return nil
}

// SetOrthographic selects orthographic projection, the only projection
// this renderer draws.
func (s *Session) SetOrthographic(context.Context) error {
	s.orthographic = true
	return nil
}

// ApplyPreset moves the camera to preset.
func (s *Session) ApplyPreset(_ context.Context, preset model.CameraPreset) error {
	angle, ok := PresetAngle(preset)
	if !ok {
		return fmt.Errorf("%w: %s", render.ErrUnknownPreset, preset)
	}
	s.angle = angle
	return nil
}

// SwapTexture binds the texture at path, or unbinds it when path is empty.
func (s *Session) SwapTexture(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.tex = nil
	if path == "" {
		return nil
	}
	tex, err := texture.LoadPNG(path)
	if err != nil {
		return err
	}
	s.tex = tex
	return nil
}

// Render draws the loaded model on a transparent frame.
func (s *Session) Render(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.geo == nil {
		return nil, render.ErrNoModel
	}
	r := newRasterizer(s.frameSize, s.geo, s.tex)
	r.draw(s.geo, s.view())
	return r.frame, nil
}

func (s *Session) view() mgl32.Mat4 {
	return s.angle.View()
}

// Orthographic reports whether SetOrthographic has been called.
func (s *Session) Orthographic() bool {
	return s.orthographic
}

// Close drops the scene.
func (s *Session) Close() error {
	s.geo = nil
	s.tex = nil
	return nil
}
