package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/render/software"
)

// NewPresetsCommand creates the "presets" cobra command, which lists the
// camera presets the renderer supports.
func NewPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available camera presets",
		Long: `List the camera presets icons can be rendered from, with their yaw and
pitch angles. Hyphenated names (isometric-right, south-front, east-right)
are accepted as aliases by --camera.

Examples:
  iconbatch presets
  iconbatch presets --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			printPresets(cmd.OutOrStdout(), software.New(0).Presets())
			return nil
		},
	}
}

// presetJSON is the JSON output structure for one camera preset.
type presetJSON struct {
	ID      string  `json:"id"`
	Yaw     float32 `json:"yaw"`
	Pitch   float32 `json:"pitch"`
	Default bool    `json:"default"`
}

// printPresets outputs presets as a text table or JSON, depending on the
// global --json flag.
//
// The table format is:
//
//	PRESET            YAW  PITCH
//	isometric_right    45     30  (default)
//	top                 0     90
func printPresets(w io.Writer, presets []model.CameraPreset) {
	rows := make([]presetJSON, 0, len(presets))
	for _, p := range presets {
		angle, _ := software.PresetAngle(p)
		rows = append(rows, presetJSON{
			ID:      string(p),
			Yaw:     angle.Yaw,
			Pitch:   angle.Pitch,
			Default: p == model.DefaultCameraPreset,
		})
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string][]presetJSON{"presets": rows}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	fmt.Fprintf(w, "%-16s %4s %6s\n", "PRESET", "YAW", "PITCH")
	for _, r := range rows {
		line := fmt.Sprintf("%-16s %4.0f %6.0f", r.ID, r.Yaw, r.Pitch)
		if r.Default {
			line += "  (default)"
		}
		fmt.Fprintln(w, line)
	}
}
