package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/iconbatch/internal/model"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_NoFile(t *testing.T) {
	opts, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), opts)
	assert.Equal(t, "isometric_right", opts.CameraPreset)
	assert.Equal(t, 32, opts.IconSize)
	assert.Equal(t, 256, opts.FrameSize)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		expected Options
	}{
		{
			name: "yaml overrides some keys",
			file: "iconbatch.yaml",
			content: `models_folder: /pack/models/blocks
camera_preset: top
icon_size: 64
`,
			expected: Options{
				ModelsFolder: "/pack/models/blocks",
				CameraPreset: "top",
				IconSize:     64,
				FrameSize:    256,
			},
		},
		{
			name: "yml extension",
			file: "iconbatch.yml",
			content: `output_folder: out
frame_size: 512
`,
			expected: Options{
				OutputFolder: "out",
				CameraPreset: "isometric_right",
				IconSize:     32,
				FrameSize:    512,
			},
		},
		{
			name:     "empty yaml keeps defaults",
			file:     "empty.yaml",
			content:  "# nothing here\n",
			expected: Defaults(),
		},
		{
			name: "toml",
			file: "iconbatch.toml",
			content: `models_folder = "/pack/models/blocks"
textures_folder = "/pack/textures/custom"
camera_preset = "south-front"
icon_size = 128
`,
			expected: Options{
				ModelsFolder:   "/pack/models/blocks",
				TexturesFolder: "/pack/textures/custom",
				CameraPreset:   "south-front",
				IconSize:       128,
				FrameSize:      256,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Load(writeConfig(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opts)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{name: "unknown yaml key", file: "c.yaml", content: "icon_sise: 64\n"},
		{name: "unknown toml key", file: "c.toml", content: "icon_sise = 64\n"},
		{name: "malformed toml", file: "c.toml", content: "icon_size = \n"},
		{name: "unsupported extension", file: "c.json", content: "{}", target: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Options) {}},
		{name: "alias is canonicalized", modify: func(o *Options) { o.CameraPreset = "East-Right" }},
		{name: "unknown preset", modify: func(o *Options) { o.CameraPreset = "fisheye" }, wantErr: true},
		{name: "icon size too small", modify: func(o *Options) { o.IconSize = 15 }, wantErr: true},
		{name: "icon size at max", modify: func(o *Options) { o.IconSize = 256 }},
		{name: "icon size too large", modify: func(o *Options) { o.IconSize = 257 }, wantErr: true},
		{name: "frame size too small", modify: func(o *Options) { o.FrameSize = 32 }, wantErr: true},
		{name: "frame size too large", modify: func(o *Options) { o.FrameSize = 4096 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Defaults()
			tt.modify(&opts)
			err := opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, opts.Preset().IsValid())
		})
	}

	t.Run("canonical id", func(t *testing.T) {
		opts := Defaults()
		opts.CameraPreset = "East-Right"
		require.NoError(t, opts.Validate())
		assert.Equal(t, model.PresetEast, opts.Preset())
	})
}
