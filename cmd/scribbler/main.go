// Package main provides the CLI entry point for scribbler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/scribbler/pkg/adapters/consoleprogress"
	"github.com/user/scribbler/pkg/adapters/filesink"
	"github.com/user/scribbler/pkg/adapters/logger"
	"github.com/user/scribbler/pkg/adapters/nullsink"
	"github.com/user/scribbler/pkg/adapters/osfilesystem"
	"github.com/user/scribbler/pkg/adapters/promrecorder"
	"github.com/user/scribbler/pkg/config"
	"github.com/user/scribbler/pkg/orchestrator"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
	"github.com/user/scribbler/pkg/source"
	"github.com/user/scribbler/pkg/summarizer"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "scribbler",
		Usage:       l10n.T("Turn videos into scribbled animations"),
		UsageText:   "scribbler [flags] [video]\nscribbler info <video>\nscribbler clean",
		Version:     version,
		HideVersion: true,
		Flags:       runFlags(),
		Action:      runAction,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     l10n.T("Scribble a video"),
				ArgsUsage: "[video]",
				Flags:     runFlags(),
				Action:    runAction,
			},
			{
				Name:      "info",
				Usage:     l10n.T("Show video metadata and output frame rate options"),
				ArgsUsage: "<video>",
				Flags:     commonFlags(),
				Action:    infoAction,
			},
			{
				Name:   "clean",
				Usage:  l10n.T("Remove intermediate frames from the workspaces"),
				Flags:  commonFlags(),
				Action: cleanAction,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("scribbler version %s", version))
					return nil
				},
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("Path to a YAML config file"),
			EnvVars:  []string{"SCRIBBLER_CONFIG"},
			Category: l10n.T("Configuration"),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}

func runFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:     "mode",
			Aliases:  []string{"m"},
			Value:    string(pipeline.ModeAI),
			Usage:    l10n.T("Transform mode (ai, experimental)"),
			Category: l10n.T("Transform"),
		},
		&cli.Float64Flag{
			Name:     "delay",
			Value:    1.0,
			Usage:    l10n.T("Seconds each AI request waits after completing"),
			Category: l10n.T("Transform"),
		},
		&cli.Float64Flag{
			Name:     "duration",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Only process the first N seconds"),
			Category: l10n.T("Video"),
		},
		&cli.Float64Flag{
			Name:     "fps",
			Usage:    l10n.T("Output frame rate (default: native)"),
			Category: l10n.T("Video"),
		},
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output video path (default: output/scribbled_<name>.mp4)"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "summary",
			Usage:    l10n.T("Output execution summary to file (Markdown format)"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Usage:    l10n.T("Write plan, metadata and outcomes JSON to the debug directory"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "metrics-addr",
			Usage:    l10n.T("Serve Prometheus metrics on this address during the run"),
			Category: l10n.T("Debug"),
		},
	)
}

// loadConfig loads the config file and environment, then applies flags.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("delay") {
		cfg.AI.Delay = c.Float64("delay")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	applyBinaryPaths(cfg)
	return cfg, nil
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// runAction executes the scribble pipeline.
func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	mode, err := pipeline.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(mode); err != nil {
		return err
	}

	log := newLogger(c, cfg)
	fs := osfilesystem.New()
	if err := cfg.EnsureDirs(fs); err != nil {
		return err
	}

	src, err := resolveSource(c, cfg, fs)
	if err != nil {
		return err
	}
	output := c.String("output")
	if output == "" {
		output = cfg.OutputPathFor(src)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Progress bars and log lines share stderr; quiet disables both.
	var progress ports.Progress = consoleprogress.Noop{}
	if !c.Bool("quiet") {
		progress = consoleprogress.NewStderr(consoleprogress.WithLabels(stageLabels()))
	}
	if p, ok := progress.(*consoleprogress.Progress); ok {
		defer p.Close()
	}

	var metrics ports.Metrics = promrecorder.Noop{}
	if addr := c.String("metrics-addr"); addr != "" {
		rec := promrecorder.New()
		metrics = rec
		go func() {
			if err := rec.Serve(ctx, addr); err != nil {
				log.Warn("Metrics server stopped: %v", err)
			}
		}()
		log.Info("Serving metrics on %s", addr)
	}

	var sink ports.DebugSink = nullsink.New()
	if cfg.Debug {
		sink = filesink.New(cfg.DebugDir, fs)
	}

	orch, strategy, err := buildOrchestrator(cfg, mode, fs, progress, metrics, sink, log)
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		SourcePath: src,
		OutputPath: output,
		TargetFPS:  c.Float64("fps"),
		Delay:      time.Duration(cfg.AI.Delay * float64(time.Second)),
	}
	if c.IsSet("duration") {
		d := c.Float64("duration")
		req.DurationCutoff = &d
	}

	result, err := orch.Run(ctx, req)
	if err != nil {
		return err
	}

	log.Info("Done in %s", result.TotalDuration().Round(time.Millisecond))

	if path := c.String("summary"); path != "" {
		model := ""
		if mode == pipeline.ModeAI {
			model = cfg.AI.Model
		}
		s := summarizer.FromRun(&result).
			WithModel(model, req.Delay, strategy.Concurrency).
			Build()
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(func(key string) string { return l10n.T(key) }),
			summarizer.WithVersion(version),
		), fs)
		if err := w.Write(path, s); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", path)
		}
	}
	return nil
}

// resolveSource returns the video named on the command line, or one found
// in the input directory.
func resolveSource(c *cli.Context, cfg config.Config, fs ports.FileSystem) (string, error) {
	if c.Args().Present() {
		src := c.Args().First()
		if err := source.Validate(fs, src); err != nil {
			return "", err
		}
		return src, nil
	}

	candidates, err := source.Discover(fs, cfg.Paths.Input)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: %s", source.ErrNoInput, cfg.Paths.Input)
	}
	return source.Choose(candidates, os.Stdin, c.App.ErrWriter)
}

// cleanAction clears the frame workspaces.
func cleanAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)
	fs := osfilesystem.New()

	orch, _, err := buildOrchestrator(cfg, pipeline.ModeExperimental, fs,
		consoleprogress.Noop{}, promrecorder.Noop{}, nullsink.New(), log)
	if err != nil {
		return err
	}
	if err := orch.Cleanup(c.Context); err != nil {
		return err
	}
	log.Info("Workspaces cleaned")
	return nil
}
