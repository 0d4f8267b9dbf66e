package orchestrator

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/user/scribbler/pkg/adapters/doodle"
	"github.com/user/scribbler/pkg/adapters/ffmpegbin"
	"github.com/user/scribbler/pkg/adapters/ffmpegdecoder"
	"github.com/user/scribbler/pkg/adapters/ffmpegencoder"
	"github.com/user/scribbler/pkg/adapters/filesink"
	"github.com/user/scribbler/pkg/adapters/ggrenderer"
	"github.com/user/scribbler/pkg/adapters/logger"
	"github.com/user/scribbler/pkg/adapters/mp4probe"
	"github.com/user/scribbler/pkg/adapters/osfilesystem"
	"github.com/user/scribbler/pkg/adapters/promrecorder"
	"github.com/user/scribbler/pkg/adapters/workspacelock"
	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/mocks"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/stages/assemble"
	"github.com/user/scribbler/pkg/stages/extract"
	"github.com/user/scribbler/pkg/stages/resample"
	"github.com/user/scribbler/pkg/stages/transform"
)

// TestIntegration_ExperimentalRun drives the full pipeline with ffmpeg,
// the real filesystem and the doodle transformer.
func TestIntegration_ExperimentalRun(t *testing.T) {
	ffmpegPath, err := ffmpegbin.Find(ffmpegbin.FFmpeg)
	if err != nil || !ffmpegbin.Available() {
		t.Skip("ffmpeg/ffprobe not available")
	}
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	root := t.TempDir()
	src := filepath.Join(root, "input", "clip.mp4")
	if err := os.MkdirAll(filepath.Dir(src), 0755); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(ffmpegPath,
		"-v", "error", "-y",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=30",
		"-frames:v", "30",
		"-c:v", "mpeg4", "-pix_fmt", "yuv420p",
		src,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("generate source video: %v: %s", err, out)
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	decoder := ffmpegdecoder.New(logger.NewNoop())
	progress := &mocks.Progress{}
	metrics := promrecorder.New()
	log := logger.NewNoop()

	doodler := doodle.New(renderer, doodle.DefaultConfig(), doodle.WithSeed(7))
	strategy := pipeline.Strategy{
		Mode:        pipeline.ModeExperimental,
		Primary:     doodler,
		Fallback:    doodler,
		Concurrency: 4,
	}

	cfg := DefaultConfig()
	cfg.OriginalDir = filepath.Join(root, "temp", "original")
	cfg.TransformedDir = filepath.Join(root, "temp", "scribbled")
	debugDir := filepath.Join(root, "debug")

	orch := New(
		Stages{
			Extract:   extract.New(decoder, renderer, fs, progress, log),
			Resample:  resample.New(fs, progress, log),
			Transform: transform.New(renderer, fs, progress, metrics, log),
			Assemble:  assemble.New(ffmpegencoder.New(), renderer, fs, progress, log),
		},
		decoder, strategy, fs,
		workspacelock.New(filepath.Join(root, "temp")),
		filesink.New(debugDir, fs),
		metrics, log, cfg,
	)

	output := filepath.Join(root, "output", "scribbled_clip.mp4")
	result, err := orch.Run(context.Background(), Request{
		SourcePath: src,
		OutputPath: output,
		TargetFPS:  10,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Extracted != 30 || result.Retained != 10 {
		t.Errorf("extracted/retained = %d/%d, want 30/10", result.Extracted, result.Retained)
	}
	if result.Fallbacks != 0 {
		t.Errorf("Fallbacks = %d, want 0", result.Fallbacks)
	}

	meta, err := mp4probe.ProbeFile(output)
	if err != nil {
		t.Fatalf("probe output: %v", err)
	}
	if meta.Codec != "mpeg4" {
		t.Errorf("output codec = %q, want mpeg4", meta.Codec)
	}
	if meta.FrameCount != 10 {
		t.Errorf("output frames = %d, want 10", meta.FrameCount)
	}
	if meta.FPS < 9.9 || meta.FPS > 10.1 {
		t.Errorf("output FPS = %v, want 10", meta.FPS)
	}

	for _, dir := range []string{cfg.OriginalDir, cfg.TransformedDir} {
		frames, err := frameset.List(fs, dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(frames) != 0 {
			t.Errorf("%s still holds %d frames", dir, len(frames))
		}
	}
	for _, name := range []string{"metadata.json", "plan.json", "outcomes.json"} {
		if _, err := os.Stat(filepath.Join(debugDir, name)); err != nil {
			t.Errorf("debug file %s: %v", name, err)
		}
	}
}
