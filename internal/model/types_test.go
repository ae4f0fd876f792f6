package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCameraPreset_IsValid checks that only defined presets pass validation.
func TestCameraPreset_IsValid(t *testing.T) {
	for _, p := range AllCameraPresets {
		assert.True(t, p.IsValid(), p.String())
	}
	assert.False(t, CameraPreset("isometric").IsValid())
	assert.False(t, CameraPreset("").IsValid())
}

// TestParseCameraPreset verifies id parsing, display-name aliases and
// case normalization.
func TestParseCameraPreset(t *testing.T) {
	tests := []struct {
		input    string
		expected CameraPreset
		hasError bool
	}{
		{"isometric_right", PresetIsometricRight, false},
		{"isometric-right", PresetIsometricRight, false},
		{"Isometric-Left", PresetIsometricLeft, false},
		{"TOP", PresetTop, false},
		{"south", PresetSouth, false},
		{"south-front", PresetSouth, false},
		{"east-right", PresetEast, false},
		{" east ", PresetEast, false},
		{"north", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseCameraPreset(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestTextureVariant_HasTexture(t *testing.T) {
	assert.True(t, TextureVariant{SourcePath: "/tmp/a.png", OutputName: "a"}.HasTexture())
	assert.False(t, TextureVariant{OutputName: "a"}.HasTexture())
}

func TestIconResult_String(t *testing.T) {
	assert.Equal(t, "chest", IconResult{OutputName: "chest", Success: true}.String())
	assert.Equal(t, "chest: texture not found",
		IconResult{OutputName: "chest", Err: "texture not found"}.String())
}

func TestBoundingBox_MaxSide(t *testing.T) {
	assert.Equal(t, 100, BoundingBox{W: 100, H: 50}.MaxSide())
	assert.Equal(t, 7, BoundingBox{W: 3, H: 7}.MaxSide())
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitNoModels, "no .geo.json files found")
		assert.Equal(t, ExitNoModels, err.Code)
		assert.Equal(t, "no .geo.json files found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("permission denied")
		err := WrapCLIError(ExitGeneralError, "failed to create output folder", inner)
		assert.Contains(t, err.Error(), "permission denied")
		assert.True(t, errors.Is(err, inner))
	})
}
