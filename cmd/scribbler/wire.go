package main

import (
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/scribbler/pkg/adapters/doodle"
	"github.com/user/scribbler/pkg/adapters/ffmpegbin"
	"github.com/user/scribbler/pkg/adapters/ffmpegdecoder"
	"github.com/user/scribbler/pkg/adapters/ffmpegencoder"
	"github.com/user/scribbler/pkg/adapters/gemini"
	"github.com/user/scribbler/pkg/adapters/ggrenderer"
	"github.com/user/scribbler/pkg/adapters/workspacelock"
	"github.com/user/scribbler/pkg/config"
	"github.com/user/scribbler/pkg/orchestrator"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
	"github.com/user/scribbler/pkg/stages/assemble"
	"github.com/user/scribbler/pkg/stages/extract"
	"github.com/user/scribbler/pkg/stages/resample"
	"github.com/user/scribbler/pkg/stages/transform"
)

// applyBinaryPaths points ffmpegbin at configured executables.
func applyBinaryPaths(cfg config.Config) {
	ffmpegbin.SetPath(ffmpegbin.FFmpeg, cfg.FFmpegPath)
	ffmpegbin.SetPath(ffmpegbin.FFprobe, cfg.FFprobePath)
}

// buildStrategy binds the transformers for mode. AI mode falls back to
// doodles; experimental mode uses doodles for both.
func buildStrategy(cfg config.Config, mode pipeline.Mode, renderer ports.Renderer) (pipeline.Strategy, error) {
	palette, err := cfg.Palette()
	if err != nil {
		return pipeline.Strategy{}, err
	}
	doodler := doodle.New(renderer, doodle.Config{
		Count:    cfg.Doodle.Count,
		Palette:  palette,
		MinWidth: cfg.Doodle.MinWidth,
		MaxWidth: cfg.Doodle.MaxWidth,
	})

	if mode == pipeline.ModeAI {
		client := gemini.NewClient(gemini.Config{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Prompts: cfg.AI.Prompts,
			Timeout: time.Duration(cfg.AI.TimeoutSec) * time.Second,
		}, renderer)
		return pipeline.Strategy{
			Mode:        pipeline.ModeAI,
			Primary:     client,
			Fallback:    doodler,
			Concurrency: cfg.AI.Concurrency,
			Throttled:   true,
		}, nil
	}

	return pipeline.Strategy{
		Mode:        pipeline.ModeExperimental,
		Primary:     doodler,
		Fallback:    doodler,
		Concurrency: cfg.Doodle.Concurrency,
	}, nil
}

// buildOrchestrator wires the ffmpeg adapters and the four stages.
func buildOrchestrator(
	cfg config.Config,
	mode pipeline.Mode,
	fs ports.FileSystem,
	progress ports.Progress,
	metrics ports.Metrics,
	sink ports.DebugSink,
	log ports.Logger,
) (*orchestrator.Orchestrator, pipeline.Strategy, error) {
	renderer := ggrenderer.New()
	strategy, err := buildStrategy(cfg, mode, renderer)
	if err != nil {
		return nil, strategy, err
	}

	decoder := ffmpegdecoder.New(log.WithComponent("decoder"))
	encoder := ffmpegencoder.New()

	stages := orchestrator.Stages{
		Extract:   extract.New(decoder, renderer, fs, progress, log.WithComponent(pipeline.StageExtract)),
		Resample:  resample.New(fs, progress, log.WithComponent(pipeline.StageResample)),
		Transform: transform.New(renderer, fs, progress, metrics, log.WithComponent(pipeline.StageTransform)),
		Assemble:  assemble.New(encoder, renderer, fs, progress, log.WithComponent(pipeline.StageAssemble)),
	}

	orch := orchestrator.New(
		stages,
		decoder,
		strategy,
		fs,
		workspacelock.New(cfg.Paths.Temp),
		sink,
		metrics,
		log,
		cfg.ToOrchestratorConfig(),
	)
	return orch, strategy, nil
}

// stageLabels returns the progress bar label for each stage.
func stageLabels() map[string]string {
	return map[string]string{
		pipeline.StageExtract:   l10n.T("Extracting"),
		pipeline.StageResample:  l10n.T("Resampling"),
		pipeline.StageTransform: l10n.T("Transforming"),
		pipeline.StageAssemble:  l10n.T("Assembling"),
	}
}
