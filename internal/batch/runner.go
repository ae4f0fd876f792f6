package batch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/shinji-kodama/iconbatch/internal/icon"
	"github.com/shinji-kodama/iconbatch/internal/manifest"
	"github.com/shinji-kodama/iconbatch/internal/model"
	"github.com/shinji-kodama/iconbatch/internal/render"
)

// ModelLoadPrefix starts the error message recorded for every variant of a
// model that failed to load.
const ModelLoadPrefix = "model load: "

// Reporter receives run progress, typically to drive a status line.
type Reporter interface {
	// Found is called once before rendering starts.
	Found(icons, models int)

	// Progress is called after every attempted icon.
	Progress(done, total int)
}

type nopReporter struct{}

func (nopReporter) Found(int, int)    {}
func (nopReporter) Progress(int, int) {}

// Runner executes plans against a renderer.
type Runner struct {
	renderer render.Renderer
	iconSize int
	logger   *log.Logger

	// Reporter is notified of progress. Nil disables reporting.
	Reporter Reporter
}

// NewRunner creates a runner writing icons of iconSize pixels. A nil
// logger discards all log output.
func NewRunner(renderer render.Renderer, iconSize int, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if iconSize <= 0 {
		iconSize = icon.DefaultSize
	}
	return &Runner{renderer: renderer, iconSize: iconSize, logger: logger}
}

// Run renders every variant of plan, writes the icons to plan.OutputDir and
// merges the successful names into the pack manifest.
//
// Per-variant and per-model failures are recorded in the returned Summary
// and never abort the run. A returned error means the run itself failed
// (output directory, render session or manifest write) or ctx was
// cancelled; the Summary then holds everything done up to that point, and
// files already written are left in place.
func (r *Runner) Run(ctx context.Context, plan *Plan) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := r.logger.With("run", summary.RunID)
	reporter := r.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	total := plan.TotalIcons()
	reporter.Found(total, len(plan.Jobs))
	logger.Info("starting run", "models", len(plan.Jobs), "icons", total, "preset", plan.Preset)
	logger.Debug("folders", "models", plan.ModelsDir, "textures", plan.TexturesDir, "output", plan.OutputDir)

	// Step 1: Ensure the output directory exists.
	if err := os.MkdirAll(plan.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output folder %s: %w", plan.OutputDir, err)
	}

	// Step 2: Resolve the camera preset against the renderer's table.
	// An unsupported preset keeps whatever camera the session starts with.
	applyPreset := render.HasPreset(r.renderer, plan.Preset)
	if !applyPreset {
		logger.Warn("camera preset not supported by renderer, keeping current camera", "preset", plan.Preset)
	}

	// Step 3: Open the single session shared by every job.
	sess, err := r.renderer.NewSession(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to create render session: %w", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			logger.Warn("failed to close render session", "err", closeErr)
		}
	}()

	record := func(res model.IconResult) {
		summary.Record(res)
		if !res.Success {
			logger.Warn("icon failed", "icon", res.OutputName, "err", res.Err)
		}
		reporter.Progress(summary.Total, total)
	}

	// Step 4: Render every job. Only cancellation stops the loop early.
	var runErr error
	for _, job := range plan.Jobs {
		if runErr = r.runJob(ctx, sess, plan, job, applyPreset, record); runErr != nil {
			break
		}
	}

	// Step 5: Register whatever was generated, even after cancellation.
	merged, err := manifest.Merge(plan.PackRoot, summary.Generated)
	summary.Added, summary.Skipped, summary.ManifestReset = merged.Added, merged.Skipped, merged.Reset
	if merged.Reset {
		logger.Warn("existing item_texture.json was unreadable and has been rebuilt", "path", manifest.Path(plan.PackRoot))
	}
	if err != nil {
		return summary, err
	}

	logger.Info("run complete",
		"succeeded", summary.Succeeded, "total", summary.Total,
		"added", summary.Added, "skipped", summary.Skipped)
	return summary, runErr
}

// runJob loads one model and renders each of its variants. It returns an
// error only when ctx is cancelled.
func (r *Runner) runJob(ctx context.Context, sess render.Session, plan *Plan, job model.ModelJob, applyPreset bool, record func(model.IconResult)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.setupModel(ctx, sess, job.ModelPath, plan.Preset, applyPreset); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		for _, v := range job.Variants {
			record(model.IconResult{OutputName: v.OutputName, Err: ModelLoadPrefix + err.Error()})
		}
		return nil
	}

	for _, v := range job.Variants {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := model.IconResult{OutputName: v.OutputName, Success: true}
		if err := r.renderVariant(ctx, sess, v, plan.OutputDir); err != nil {
			res.Success, res.Err = false, err.Error()
		}
		record(res)
	}
	return nil
}

// setupModel loads the model and positions the camera.
func (r *Runner) setupModel(ctx context.Context, sess render.Session, path string, preset model.CameraPreset, applyPreset bool) error {
	if err := sess.LoadModel(ctx, path); err != nil {
		return err
	}
	if err := sess.SetOrthographic(ctx); err != nil {
		return err
	}
	if applyPreset {
		if err := sess.ApplyPreset(ctx, preset); err != nil {
			return err
		}
	}
	return render.Settle(ctx, sess)
}

// renderVariant swaps in the variant's texture, renders, crops and writes
// one icon.
func (r *Runner) renderVariant(ctx context.Context, sess render.Session, v model.TextureVariant, outputDir string) error {
	if v.HasTexture() {
		if _, err := os.Stat(v.SourcePath); err != nil {
			return fmt.Errorf("texture not found: %s", v.SourcePath)
		}
	}
	if err := sess.SwapTexture(ctx, v.SourcePath); err != nil {
		return err
	}
	if err := render.Settle(ctx, sess); err != nil {
		return err
	}

	frame, err := sess.Render(ctx)
	if err != nil {
		return err
	}

	path, err := icon.WritePNG(outputDir, v.OutputName, icon.Process(frame, r.iconSize))
	if err != nil {
		return err
	}
	r.logger.Debug("icon written", "icon", v.OutputName, "path", path)
	return nil
}
