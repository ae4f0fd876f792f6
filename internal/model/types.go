package model

import (
	"fmt"
	"strings"
)

// CameraPreset identifies one of the named orthographic camera angles an
// icon can be rendered from. The string values match the preset ids used by
// Bedrock modeling tools, so they can be looked up in a host's preset table
// without translation.
type CameraPreset string

const (
	// PresetIsometricRight looks down at the model from the front-right corner.
	PresetIsometricRight CameraPreset = "isometric_right"

	// PresetIsometricLeft looks down at the model from the front-left corner.
	PresetIsometricLeft CameraPreset = "isometric_left"

	// PresetTop looks straight down.
	PresetTop CameraPreset = "top"

	// PresetSouth looks at the front (south) face.
	PresetSouth CameraPreset = "south"

	// PresetEast looks at the right (east) face.
	PresetEast CameraPreset = "east"
)

// DefaultCameraPreset is used when no preset is configured.
const DefaultCameraPreset = PresetIsometricRight

// AllCameraPresets lists every known preset in display order.
var AllCameraPresets = []CameraPreset{
	PresetIsometricRight,
	PresetIsometricLeft,
	PresetTop,
	PresetSouth,
	PresetEast,
}

// presetAliases maps the descriptive user-facing names onto preset ids.
var presetAliases = map[string]CameraPreset{
	"isometric-right": PresetIsometricRight,
	"isometric-left":  PresetIsometricLeft,
	"south-front":     PresetSouth,
	"front":           PresetSouth,
	"east-right":      PresetEast,
	"right":           PresetEast,
}

// String returns the string representation of CameraPreset.
func (p CameraPreset) String() string {
	return string(p)
}

// IsValid checks whether the preset is one of the predefined ids.
func (p CameraPreset) IsValid() bool {
	switch p {
	case PresetIsometricRight, PresetIsometricLeft, PresetTop, PresetSouth, PresetEast:
		return true
	default:
		return false
	}
}

// ParseCameraPreset converts a string to a CameraPreset. Matching is case
// insensitive and accepts both preset ids ("isometric_right") and the
// hyphenated display names ("isometric-right", "south-front").
func ParseCameraPreset(s string) (CameraPreset, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := presetAliases[key]; ok {
		return alias, nil
	}
	preset := CameraPreset(key)
	if !preset.IsValid() {
		return "", fmt.Errorf("invalid camera preset: %q (valid: isometric_right, isometric_left, top, south, east)", s)
	}
	return preset, nil
}

// TextureVariant is one texture a model is rendered with. Each variant
// produces exactly one icon.
type TextureVariant struct {
	// SourcePath is the absolute path to the texture PNG. Empty means the
	// model is rendered without any texture applied.
	SourcePath string `json:"sourcePath,omitempty"`

	// OutputName is the icon filename stem and manifest key. It must be
	// unique within a run.
	OutputName string `json:"outputName"`
}

// HasTexture reports whether the variant applies a texture.
func (v TextureVariant) HasTexture() bool {
	return v.SourcePath != ""
}

// ModelJob groups every texture variant of one model file, so the model is
// loaded into the renderer once and only textures are swapped between icons.
type ModelJob struct {
	// ModelName is the model file's base name without the .geo.json suffix.
	ModelName string `json:"modelName"`

	// ModelPath is the absolute path to the .geo.json file.
	ModelPath string `json:"modelPath"`

	// Variants is never empty; a model without textures gets a single
	// untextured variant.
	Variants []TextureVariant `json:"variants"`
}

// IconResult records the outcome of processing one texture variant.
type IconResult struct {
	OutputName string `json:"outputName"`
	Success    bool   `json:"success"`
	Err        string `json:"error,omitempty"`
}

// String returns "name: error" for failed results and the name otherwise.
func (r IconResult) String() string {
	if r.Success {
		return r.OutputName
	}
	return fmt.Sprintf("%s: %s", r.OutputName, r.Err)
}

// BoundingBox is an axis-aligned pixel rectangle. W and H are at least 1
// for any box produced by the bounds scanner.
type BoundingBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// MaxSide returns the larger of W and H.
func (b BoundingBox) MaxSide() int {
	if b.W > b.H {
		return b.W
	}
	return b.H
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred, including an
	// unexpected failure that aborted a run part way through.
	ExitGeneralError ExitCode = 1

	// ExitInvalidInput indicates a missing models folder or an invalid option.
	ExitInvalidInput ExitCode = 2

	// ExitNoModels indicates the models folder contains no .geo.json files.
	ExitNoModels ExitCode = 3

	// ExitIconFailures indicates the run completed but at least one icon
	// failed. Only returned in strict mode.
	ExitIconFailures ExitCode = 4
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
