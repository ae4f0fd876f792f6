package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/iconbatch/internal/batch"
	"github.com/shinji-kodama/iconbatch/internal/config"
	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/render/software"
)

// runFlags holds the run option flags shared by the generate and watch
// commands. Only flags explicitly set on the command line override values
// from the config file.
type runFlags struct {
	// textures overrides the textures folder (default: <pack>/textures/blocks).
	textures string

	// output overrides the icon output folder (default: <pack>/textures/items).
	output string

	// camera is a preset id or alias.
	camera string

	// size is the icon edge length in pixels.
	size int

	// frameSize is the edge length of the frame rendered before cropping.
	frameSize int

	// strict turns icon failures into a non-zero exit code.
	strict bool
}

// register binds the run flags to cmd.
func (f *runFlags) register(cmd *cobra.Command) {
	defaults := config.Defaults()
	cmd.Flags().StringVar(&f.textures, "textures", "", "Textures folder (default: <pack>/textures/blocks)")
	cmd.Flags().StringVar(&f.output, "output", "", "Icon output folder (default: <pack>/textures/items)")
	cmd.Flags().StringVar(&f.camera, "camera", defaults.CameraPreset, "Camera preset (see 'iconbatch presets')")
	cmd.Flags().IntVar(&f.size, "size", defaults.IconSize, "Icon size in pixels (16-256)")
	cmd.Flags().IntVar(&f.frameSize, "frame-size", defaults.FrameSize, "Render frame size in pixels (64-2048)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Exit with code 4 when any icon fails")
}

// NewGenerateCommand creates the "generate" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewGenerateCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "generate [models-folder]",
		Short: "Render icons for every model in a folder",
		Long: `Render one icon per texture variant of every .geo.json model in the
models folder and register the icons in textures/item_texture.json.

Textures are matched per model by exact name (<model>.png), by subfolder
(<model>/*.png) and by numbered suffix (<model>2.png, <model>3.png, ...).
Models without any match are rendered untextured.

The pack root is the grandparent of the models folder, so
<pack>/models/blocks resolves textures from <pack>/textures/blocks and
writes icons to <pack>/textures/items.

Examples:
  iconbatch generate ./pack/models/blocks
  iconbatch generate --camera top --size 64 ./pack/models/blocks
  iconbatch generate --config iconbatch.yaml --json`,

		// The models folder may also come from the config file.
		Args: cobra.MaximumNArgs(1),

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runGenerate is the main orchestration function for the generate command.
func runGenerate(cmd *cobra.Command, args []string, flags *runFlags) error {
	// Step 1: Layer defaults, the config file and flags.
	opts, err := resolveOptions(cmd, args, flags)
	if err != nil {
		return err
	}

	// Step 2: Plan and execute the batch.
	plan, summary, err := runBatch(cmd.Context(), opts, cmd.ErrOrStderr())
	if summary != nil {
		printGenerateResult(cmd.OutOrStdout(), plan, summary)
	}
	if err != nil {
		return err
	}

	// Step 3: In strict mode any failed icon fails the command.
	if flags.strict && summary.Failed() > 0 {
		return model.NewCLIError(model.ExitIconFailures,
			fmt.Sprintf("%d of %d icons failed", summary.Failed(), summary.Total))
	}
	return nil
}

// resolveOptions builds the run options: defaults, overlaid by the config
// file, overlaid by flags that were set explicitly and the positional
// models folder.
func resolveOptions(cmd *cobra.Command, args []string, flags *runFlags) (config.Options, error) {
	opts, err := config.Load(configFile)
	if err != nil {
		return opts, model.WrapCLIError(model.ExitInvalidInput, "invalid config file", err)
	}
	if configFile != "" {
		VerboseLog("Loaded config file: %s", configFile)
	}

	if len(args) > 0 {
		opts.ModelsFolder = args[0]
	}
	changed := cmd.Flags().Changed
	if changed("textures") {
		opts.TexturesFolder = flags.textures
	}
	if changed("output") {
		opts.OutputFolder = flags.output
	}
	if changed("camera") {
		opts.CameraPreset = flags.camera
	}
	if changed("size") {
		opts.IconSize = flags.size
	}
	if changed("frame-size") {
		opts.FrameSize = flags.frameSize
	}

	if err := opts.Validate(); err != nil {
		return opts, model.WrapCLIError(model.ExitInvalidInput, "invalid options", err)
	}
	return opts, nil
}

// runBatch plans and runs one batch with the software renderer, reporting
// progress on statusOut. The plan and summary are returned whenever the
// run got far enough to produce them, even if err is set.
func runBatch(ctx context.Context, opts config.Options, statusOut io.Writer) (*batch.Plan, *batch.Summary, error) {
	status := newStatusLine(statusOut, jsonOutput)

	plan, err := batch.NewPlan(batch.Options{
		ModelsFolder:   opts.ModelsFolder,
		TexturesFolder: opts.TexturesFolder,
		OutputFolder:   opts.OutputFolder,
		Preset:         opts.Preset(),
	})
	if err != nil {
		return nil, nil, batchError(err)
	}
	VerboseLog("Pack root: %s", plan.PackRoot)

	runner := batch.NewRunner(software.New(opts.FrameSize), opts.IconSize, logger)
	runner.Reporter = status

	summary, err := runner.Run(ctx, plan)
	if err != nil {
		status.Failed(err)
		return plan, summary, batchError(err)
	}
	status.Complete(summary.Succeeded, summary.Total)
	return plan, summary, nil
}

// batchError maps batch errors onto CLI exit codes.
func batchError(err error) error {
	switch {
	case errors.Is(err, batch.ErrNoModelsFolder):
		return model.WrapCLIError(model.ExitInvalidInput, "invalid models folder", err)
	case errors.Is(err, batch.ErrNoModels):
		return model.WrapCLIError(model.ExitNoModels, "nothing to render", err)
	default:
		return model.WrapCLIError(model.ExitGeneralError, "icon generation failed", err)
	}
}

// generateResultJSON is the JSON output of the generate command.
type generateResultJSON struct {
	*batch.Summary
	PackRoot  string             `json:"packRoot"`
	OutputDir string             `json:"outputDir"`
	Preset    model.CameraPreset `json:"preset"`
}

// printGenerateResult outputs the run summary in text or JSON format,
// depending on the global --json flag.
func printGenerateResult(w io.Writer, plan *batch.Plan, summary *batch.Summary) {
	if IsJSONOutput() {
		s := *summary
		result := generateResultJSON{
			Summary:   &s,
			PackRoot:  plan.PackRoot,
			OutputDir: plan.OutputDir,
			Preset:    plan.Preset,
		}
		// Use empty slices instead of nil so JSON shows [] instead of null.
		if result.Generated == nil {
			result.Generated = []string{}
		}
		if result.Errors == nil {
			result.Errors = []model.IconResult{}
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	_ = summary.WriteText(w)
}
