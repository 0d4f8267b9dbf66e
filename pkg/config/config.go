// Package config provides configuration loading and management.
//
// Values are layered: Defaults, then an optional YAML file, then the
// environment. Command-line flags are applied by the caller last.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/user/scribbler/pkg/orchestrator"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// Config represents the full configuration for scribbler.
type Config struct {
	Paths  PathsConfig  `yaml:"paths"`
	AI     AIConfig     `yaml:"ai"`
	Doodle DoodleConfig `yaml:"doodle"`
	Video  VideoConfig  `yaml:"video"`

	FFmpegPath  string `yaml:"ffmpeg_path" env:"FFMPEG_PATH"`
	FFprobePath string `yaml:"ffprobe_path" env:"FFPROBE_PATH"`
	LogLevel    string `yaml:"log_level" env:"SCRIBBLER_LOG_LEVEL"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// PathsConfig is the working directory layout.
type PathsConfig struct {
	Input     string `yaml:"input"`
	Output    string `yaml:"output"`
	Temp      string `yaml:"temp"`
	Original  string `yaml:"original"`
	Scribbled string `yaml:"scribbled"`
}

// AIConfig configures the hosted image model.
type AIConfig struct {
	// APIKey is read from the environment only.
	APIKey      string   `yaml:"-" env:"GOOGLE_API_KEY"`
	Model       string   `yaml:"model" env:"SCRIBBLER_GEMINI_MODEL"`
	BaseURL     string   `yaml:"base_url"`
	Prompts     []string `yaml:"prompts"`
	TimeoutSec  int      `yaml:"timeout_sec"`
	Concurrency int      `yaml:"concurrency"`
	Delay       float64  `yaml:"delay"` // seconds each task waits after its model call
}

// DoodleConfig configures the procedural doodle renderer.
type DoodleConfig struct {
	Count       int      `yaml:"count"`
	Colors      []string `yaml:"colors"`
	MinWidth    int      `yaml:"min_width"`
	MaxWidth    int      `yaml:"max_width"`
	Concurrency int      `yaml:"concurrency"`
}

// VideoConfig configures frame and video encoding.
type VideoConfig struct {
	Codec        string `yaml:"codec"`
	Quality      int    `yaml:"quality"`       // mpeg4 quantizer, 1-31
	FrameQuality int    `yaml:"frame_quality"` // JPEG quality of workspace frames
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Paths: PathsConfig{
			Input:     "input",
			Output:    "output",
			Temp:      "temp",
			Original:  filepath.Join("temp", "original"),
			Scribbled: filepath.Join("temp", "scribbled"),
		},
		AI: AIConfig{
			Model:       "gemini-2.5-flash-image",
			TimeoutSec:  60,
			Concurrency: 5,
			Delay:       1.0,
		},
		Doodle: DoodleConfig{
			Count:       20,
			Colors:      []string{"#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff8000", "#8000ff"},
			MinWidth:    2,
			MaxWidth:    5,
			Concurrency: 10,
		},
		Video: VideoConfig{
			Codec:        "mp4v",
			Quality:      3,
			FrameQuality: 95,
		},
		LogLevel: "info",
		DebugDir: filepath.Join("temp", "debug"),
	}
}

// Load builds a Config from Defaults, the YAML file at path (if not empty)
// and the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: environment: %w", pipeline.ErrConfiguration, err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file over Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse %s: %w", pipeline.ErrConfiguration, path, err)
	}

	return cfg, nil
}

// Validate checks the settings needed for mode.
func (c Config) Validate(mode pipeline.Mode) error {
	var errs []error

	if mode == pipeline.ModeAI {
		if strings.TrimSpace(c.AI.APIKey) == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY is not set; export it or use --mode experimental"))
		}
		if c.AI.Concurrency <= 0 {
			errs = append(errs, fmt.Errorf("ai.concurrency must be positive, got %d", c.AI.Concurrency))
		}
		if c.AI.Delay < 0 {
			errs = append(errs, fmt.Errorf("ai.delay must not be negative, got %v", c.AI.Delay))
		}
	}
	if c.Doodle.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("doodle.concurrency must be positive, got %d", c.Doodle.Concurrency))
	}
	if c.Doodle.MinWidth > c.Doodle.MaxWidth {
		errs = append(errs, fmt.Errorf("doodle.min_width %d exceeds max_width %d", c.Doodle.MinWidth, c.Doodle.MaxWidth))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}
	if c.Video.Quality < 1 || c.Video.Quality > 31 {
		errs = append(errs, fmt.Errorf("video.quality must be 1-31, got %d", c.Video.Quality))
	}
	if c.Video.FrameQuality < 1 || c.Video.FrameQuality > 100 {
		errs = append(errs, fmt.Errorf("video.frame_quality must be 1-100, got %d", c.Video.FrameQuality))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", pipeline.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// EnsureDirs creates the input, output and workspace directories.
func (c Config) EnsureDirs(fs ports.FileSystem) error {
	for _, dir := range []string{c.Paths.Input, c.Paths.Output, c.Paths.Original, c.Paths.Scribbled} {
		if err := fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// OutputPathFor returns the default output path for a source video:
// <output dir>/scribbled_<stem>.mp4.
func (c Config) OutputPathFor(source string) string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return filepath.Join(c.Paths.Output, "scribbled_"+stem+".mp4")
}

// Palette parses Doodle.Colors.
func (c Config) Palette() ([]color.Color, error) {
	palette := make([]color.Color, 0, len(c.Doodle.Colors))
	for _, hex := range c.Doodle.Colors {
		col, err := ParseColor(hex)
		if err != nil {
			return nil, err
		}
		palette = append(palette, col)
	}
	return palette, nil
}

// ParseColor parses a #rrggbb hex color string.
func ParseColor(hex string) (color.Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return nil, fmt.Errorf("invalid color %q: want #rrggbb", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OriginalDir:    c.Paths.Original,
		TransformedDir: c.Paths.Scribbled,
		FrameQuality:   c.Video.FrameQuality,
		Codec:          c.Video.Codec,
		VideoQuality:   c.Video.Quality,
	}
}
