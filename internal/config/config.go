package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/iconbatch/internal/icon"
	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/render/software"
)

// ErrUnsupportedFormat is returned by Load for config files whose extension
// is neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Options holds every user-settable option of a batch run.
type Options struct {
	// ModelsFolder is the directory containing the .geo.json models. A path
	// to a file inside that directory and a file:// URL are also accepted.
	ModelsFolder string `yaml:"models_folder" toml:"models_folder" json:"modelsFolder"`

	// TexturesFolder overrides the default <packRoot>/textures/blocks.
	TexturesFolder string `yaml:"textures_folder" toml:"textures_folder" json:"texturesFolder,omitempty"`

	// OutputFolder overrides the default <packRoot>/textures/items.
	OutputFolder string `yaml:"output_folder" toml:"output_folder" json:"outputFolder,omitempty"`

	// CameraPreset is a preset id or one of its aliases.
	CameraPreset string `yaml:"camera_preset" toml:"camera_preset" json:"cameraPreset"`

	// IconSize is the edge length of the written icons in pixels.
	IconSize int `yaml:"icon_size" toml:"icon_size" json:"iconSize"`

	// FrameSize is the edge length of the frames rendered before cropping.
	FrameSize int `yaml:"frame_size" toml:"frame_size" json:"frameSize"`
}

// Defaults returns the built-in options.
func Defaults() Options {
	return Options{
		CameraPreset: string(model.DefaultCameraPreset),
		IconSize:     icon.DefaultSize,
		FrameSize:    software.DefaultFrameSize,
	}
}

// Load returns Defaults overlaid with the config file at path. An empty
// path returns Defaults unchanged. Keys missing from the file keep their
// default values.
func Load(path string) (Options, error) {
	opts := Defaults()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF; treat it as "no overrides".
		if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			return opts, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return opts, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return opts, nil
}

// Validate checks value ranges and canonicalizes CameraPreset to its id.
func (o *Options) Validate() error {
	preset, err := model.ParseCameraPreset(o.CameraPreset)
	if err != nil {
		return err
	}
	o.CameraPreset = string(preset)

	if o.IconSize < icon.MinSize || o.IconSize > icon.MaxSize {
		return fmt.Errorf("icon size %d out of range [%d, %d]", o.IconSize, icon.MinSize, icon.MaxSize)
	}
	if o.FrameSize < software.MinFrameSize || o.FrameSize > software.MaxFrameSize {
		return fmt.Errorf("frame size %d out of range [%d, %d]", o.FrameSize, software.MinFrameSize, software.MaxFrameSize)
	}
	return nil
}

// Preset returns the camera preset. Call Validate first.
func (o Options) Preset() model.CameraPreset {
	return model.CameraPreset(o.CameraPreset)
}
