// Tests for option layering, output formatting, the watch debounce loop and
// end-to-end command runs with the software renderer.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/iconbatch/internal/batch"
	"github.com/shinji-kodama/iconbatch/internal/model"
)

const testCubeGeo = `{
	"format_version": "1.12.0",
	"minecraft:geometry": [{
		"description": {"identifier": "geometry.crate", "texture_width": 16, "texture_height": 16},
		"bones": [{"name": "root", "pivot": [0, 0, 0],
			"cubes": [{"origin": [-8, 0, -8], "size": [16, 16, 16], "uv": [0, 0]}]}]
	}]
}`

// newTestPack creates <tmp>/pack/models/blocks with the given models and
// <tmp>/pack/textures/blocks with the given solid-color textures.
func newTestPack(t *testing.T, models map[string]string, textures []string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "pack")
	modelsDir := filepath.Join(root, "models", "blocks")
	texturesDir := filepath.Join(root, "textures", "blocks")
	require.NoError(t, os.MkdirAll(modelsDir, 0o755))
	require.NoError(t, os.MkdirAll(texturesDir, 0o755))

	for name, content := range models {
		require.NoError(t, os.WriteFile(filepath.Join(modelsDir, name+".geo.json"), []byte(content), 0o644))
	}
	for _, rel := range textures {
		path := filepath.Join(texturesDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
			}
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	}
	return root
}

// executeRoot runs the root command with args and returns stdout, stderr
// and the command error.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() {
		jsonOutput, verbose, configFile = false, false, ""
	})
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGenerateCommand(t *testing.T) {
	packRoot := newTestPack(t,
		map[string]string{"crate": testCubeGeo},
		[]string{"crate.png", "crate2.png"},
	)
	modelsDir := filepath.Join(packRoot, "models", "blocks")

	stdout, stderr, err := executeRoot(t, "generate", modelsDir, "--size", "16")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Generated 2/2 icons\n")
	assert.Contains(t, stdout, "item_texture.json: 2 added, 0 already existed\n")
	assert.Contains(t, stderr, "Found 2 icons from 1 models. Processing...")
	assert.Contains(t, stderr, "Icon generation complete: 2/2")

	for _, name := range []string{"crate", "crate2"} {
		f, err := os.Open(filepath.Join(packRoot, "textures", "items", name+".icon.png"))
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
	}
}

func TestGenerateCommand_JSON(t *testing.T) {
	packRoot := newTestPack(t, map[string]string{"barrel": testCubeGeo}, nil)
	modelsDir := filepath.Join(packRoot, "models", "blocks")

	stdout, stderr, err := executeRoot(t, "--json", "generate", modelsDir, "--camera", "top")
	require.NoError(t, err)
	// Status lines are suppressed in JSON mode.
	assert.NotContains(t, stderr, "Found 1 icons")

	var result struct {
		RunID     string             `json:"runId"`
		Succeeded int                `json:"succeeded"`
		Total     int                `json:"total"`
		Added     int                `json:"added"`
		Generated []string           `json:"generated"`
		Errors    []model.IconResult `json:"errors"`
		Preset    string             `json:"preset"`
		OutputDir string             `json:"outputDir"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, []string{"barrel"}, result.Generated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "top", result.Preset)
	assert.Equal(t, filepath.Join(packRoot, "textures", "items"), result.OutputDir)
}

func TestGenerateCommand_ExitCodes(t *testing.T) {
	emptyPack := newTestPack(t, nil, nil)
	brokenPack := newTestPack(t, map[string]string{"broken": `{"minecraft:geometry": [`}, nil)

	tests := []struct {
		name string
		args []string
		code model.ExitCode
	}{
		{
			name: "no models folder",
			args: []string{"generate"},
			code: model.ExitInvalidInput,
		},
		{
			name: "missing models folder",
			args: []string{"generate", filepath.Join(t.TempDir(), "missing")},
			code: model.ExitInvalidInput,
		},
		{
			name: "no models",
			args: []string{"generate", filepath.Join(emptyPack, "models", "blocks")},
			code: model.ExitNoModels,
		},
		{
			name: "invalid preset",
			args: []string{"generate", "--camera", "fisheye", filepath.Join(emptyPack, "models", "blocks")},
			code: model.ExitInvalidInput,
		},
		{
			name: "icon size out of range",
			args: []string{"generate", "--size", "8", filepath.Join(emptyPack, "models", "blocks")},
			code: model.ExitInvalidInput,
		},
		{
			name: "strict with failed icons",
			args: []string{"generate", "--strict", filepath.Join(brokenPack, "models", "blocks")},
			code: model.ExitIconFailures,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeRoot(t, tt.args...)
			require.Error(t, err)
			var cliErr *model.CLIError
			require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T", err)
			assert.Equal(t, tt.code, cliErr.Code)
		})
	}

	t.Run("no models writes nothing", func(t *testing.T) {
		packRoot := newTestPack(t, nil, nil)
		_, _, err := executeRoot(t, "generate", filepath.Join(packRoot, "models", "blocks"))

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr), "expected CLIError, got %T", err)
		assert.Equal(t, model.ExitNoModels, cliErr.Code)
		assert.NoDirExists(t, filepath.Join(packRoot, "textures", "items"))
		assert.NoFileExists(t, filepath.Join(packRoot, "textures", "item_texture.json"))
	})

	t.Run("failed icons without strict succeed", func(t *testing.T) {
		stdout, _, err := executeRoot(t, "generate", filepath.Join(brokenPack, "models", "blocks"))
		require.NoError(t, err)
		assert.Contains(t, stdout, "Generated 0/1 icons\n")
		assert.Contains(t, stdout, "  - broken: model load: ")
	})
}

func TestPrintGenerateResult_JSONKeepsSummary(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	plan := &batch.Plan{PackRoot: "/pack", OutputDir: "/pack/textures/items", Preset: model.PresetTop}
	summary := &batch.Summary{RunID: "run-1", Total: 1}

	var buf bytes.Buffer
	printGenerateResult(&buf, plan, summary)

	assert.Contains(t, buf.String(), `"generated": []`)
	assert.Contains(t, buf.String(), `"errors": []`)
	assert.Nil(t, summary.Generated)
	assert.Nil(t, summary.Errors)
}

func TestResolveOptions_Precedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "iconbatch.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`models_folder: /from/config
camera_preset: top
icon_size: 64
frame_size: 512
`), 0o644))

	configFile = cfg
	t.Cleanup(func() { configFile = "" })

	flags := &runFlags{}
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--size", "128", "--camera", "East-Right"}))

	t.Run("flags override file", func(t *testing.T) {
		opts, err := resolveOptions(cmd, nil, flags)
		require.NoError(t, err)
		assert.Equal(t, "/from/config", opts.ModelsFolder)
		assert.Equal(t, 128, opts.IconSize)
		assert.Equal(t, model.PresetEast, opts.Preset())
		// Not set on the command line, so the file value wins over the flag default.
		assert.Equal(t, 512, opts.FrameSize)
	})

	t.Run("positional folder overrides file", func(t *testing.T) {
		opts, err := resolveOptions(cmd, []string{"/from/args"}, flags)
		require.NoError(t, err)
		assert.Equal(t, "/from/args", opts.ModelsFolder)
	})
}

func TestResolveOptions_BadConfig(t *testing.T) {
	configFile = filepath.Join(t.TempDir(), "iconbatch.ini")
	t.Cleanup(func() { configFile = "" })
	require.NoError(t, os.WriteFile(configFile, []byte("x=1"), 0o644))

	flags := &runFlags{}
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)

	_, err := resolveOptions(cmd, nil, flags)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInvalidInput, cliErr.Code)
}

func TestBatchError(t *testing.T) {
	tests := []struct {
		err  error
		code model.ExitCode
	}{
		{err: batch.ErrNoModelsFolder, code: model.ExitInvalidInput},
		{err: fmt.Errorf("%w in /x", batch.ErrNoModels), code: model.ExitNoModels},
		{err: errors.New("disk full"), code: model.ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var cliErr *model.CLIError
			require.True(t, errors.As(batchError(tt.err), &cliErr))
			assert.Equal(t, tt.code, cliErr.Code)
			assert.ErrorIs(t, cliErr, tt.err)
		})
	}
}

func TestPrintPresets(t *testing.T) {
	presets := []model.CameraPreset{model.PresetIsometricRight, model.PresetTop}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		printPresets(&buf, presets)
		assert.Equal(t, "PRESET            YAW  PITCH\n"+
			"isometric_right    45     30  (default)\n"+
			"top                 0     90\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		jsonOutput = true
		t.Cleanup(func() { jsonOutput = false })

		var buf bytes.Buffer
		printPresets(&buf, presets)
		var out struct {
			Presets []presetJSON `json:"presets"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, []presetJSON{
			{ID: "isometric_right", Yaw: 45, Pitch: 30, Default: true},
			{ID: "top", Yaw: 0, Pitch: 90},
		}, out.Presets)
	})
}

func TestPrintError(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, "nothing to render", errors.New("no .geo.json files found"))
		assert.Equal(t, "Error: nothing to render: no .geo.json files found\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		jsonOutput = true
		t.Cleanup(func() { jsonOutput = false })

		var buf bytes.Buffer
		printError(&buf, "invalid options", nil)
		var out map[string]map[string]string
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "invalid options", out["error"]["message"])
		assert.NotContains(t, out["error"], "detail")
	})
}

func TestIsRelevantChange(t *testing.T) {
	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{name: "model written", ev: fsnotify.Event{Name: "/m/chest.geo.json", Op: fsnotify.Write}, want: true},
		{name: "texture created", ev: fsnotify.Event{Name: "/t/chest.png", Op: fsnotify.Create}, want: true},
		{name: "texture removed", ev: fsnotify.Event{Name: "/t/chest.png", Op: fsnotify.Remove}, want: true},
		{name: "texture renamed", ev: fsnotify.Event{Name: "/t/chest.png", Op: fsnotify.Rename}, want: true},
		{name: "chmod only", ev: fsnotify.Event{Name: "/t/chest.png", Op: fsnotify.Chmod}, want: false},
		{name: "other json", ev: fsnotify.Event{Name: "/m/chest.json", Op: fsnotify.Write}, want: false},
		{name: "editor swap file", ev: fsnotify.Event{Name: "/t/chest.png.swp", Op: fsnotify.Write}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantChange(tt.ev))
		})
	}
}

func TestWatchDirs(t *testing.T) {
	packRoot := newTestPack(t, nil, []string{"door/open.png", "crate.png"})
	modelsDir := filepath.Join(packRoot, "models", "blocks")
	texturesDir := filepath.Join(packRoot, "textures", "blocks")

	assert.Equal(t, []string{modelsDir, texturesDir, filepath.Join(texturesDir, "door")},
		watchDirs(modelsDir, texturesDir))
	assert.Equal(t, []string{modelsDir}, watchDirs(modelsDir, filepath.Join(packRoot, "missing")))
}

func TestDebounceChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event)
	errs := make(chan error)
	triggered := make(chan struct{}, 10)
	var observed []string

	done := make(chan error, 1)
	go func() {
		done <- debounceChanges(ctx, events, errs, 30*time.Millisecond,
			func(ev fsnotify.Event) { observed = append(observed, ev.Name) },
			func(context.Context) { triggered <- struct{}{} },
		)
	}()

	// A burst of relevant changes results in a single run.
	events <- fsnotify.Event{Name: "a.png", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "b.geo.json", Op: fsnotify.Create}
	events <- fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "a.png", Op: fsnotify.Write}

	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a run after the quiet period")
	}
	select {
	case <-triggered:
		t.Fatal("expected exactly one run for one burst")
	case <-time.After(150 * time.Millisecond):
	}

	// Watcher errors do not stop the loop.
	errs <- errors.New("queue overflow")
	events <- fsnotify.Event{Name: "c.png", Op: fsnotify.Remove}
	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a second run")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
	assert.Equal(t, []string{"a.png", "b.geo.json", "notes.txt", "a.png", "c.png"}, observed)
}

func TestStatusLine_NonInteractive(t *testing.T) {
	var buf bytes.Buffer
	s := newStatusLine(&buf, false)
	s.Found(3, 2)
	s.Progress(1, 3)
	s.Complete(2, 3)
	s.Failed(errors.New("disk full"))

	assert.Equal(t, "Found 3 icons from 2 models. Processing...\n"+
		"Icon generation complete: 2/3\n"+
		"Failed: disk full\n", buf.String())

	buf.Reset()
	quiet := newStatusLine(&buf, true)
	quiet.Found(1, 1)
	quiet.Complete(1, 1)
	assert.Empty(t, buf.String())
}
