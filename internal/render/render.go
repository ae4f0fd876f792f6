package render

import (
	"context"
	"errors"
	"image"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

var (
	// ErrUnknownPreset is returned by Session.ApplyPreset for a preset that
	// is not in the renderer's table.
	ErrUnknownPreset = errors.New("unknown camera preset")

	// ErrNoModel is returned by calls that need a loaded model.
	ErrNoModel = errors.New("no model loaded")
)

// Renderer creates render sessions.
type Renderer interface {
	// Presets lists the camera presets this renderer can apply.
	Presets() []model.CameraPreset

	// NewSession creates an empty scene. The caller must Close it.
	NewSession(ctx context.Context) (Session, error)
}

// Session is one mutable scene.
type Session interface {
	// LoadModel replaces the current scene with the model at path and
	// removes all textures.
	LoadModel(ctx context.Context, path string) error

	// SetOrthographic switches the camera to orthographic projection.
	SetOrthographic(ctx context.Context) error

	// ApplyPreset moves the camera to a named preset.
	ApplyPreset(ctx context.Context, preset model.CameraPreset) error

	// SwapTexture removes every texture from the scene and, when path is
	// not empty, adds the texture at path.
	SwapTexture(ctx context.Context, path string) error

	// Render draws the current scene on a transparent background and
	// returns the frame.
	Render(ctx context.Context) (*image.RGBA, error)

	// Close releases the scene.
	Close() error
}

// Settler is implemented by sessions that need an explicit wait for the host
// to finish updating after a state change. The orchestrator calls Settle
// after model and camera setup and after each texture swap.
type Settler interface {
	Settle(ctx context.Context) error
}

// Settle calls s.Settle when s implements Settler.
func Settle(ctx context.Context, s Session) error {
	if st, ok := s.(Settler); ok {
		return st.Settle(ctx)
	}
	return nil
}

// HasPreset reports whether r supports preset.
func HasPreset(r Renderer, preset model.CameraPreset) bool {
	for _, p := range r.Presets() {
		if p == preset {
			return true
		}
	}
	return false
}
