// Package summarizer provides summary generation for scribble runs.
package summarizer

import (
	"sort"
	"time"

	"github.com/user/scribbler/pkg/orchestrator"
	"github.com/user/scribbler/pkg/pipeline"
)

// Summary contains all data collected during a run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Source video
	Input InputInfo

	// Run settings
	Settings Settings

	// Output details
	Result ResultInfo

	// Stage timings in pipeline order
	Stages []StageTiming
}

// InputInfo describes the source video.
type InputInfo struct {
	Path        string
	FPS         float64
	FrameCount  int // 0 = unknown
	Width       int
	Height      int
	DurationSec float64
}

// Settings contains the run configuration.
type Settings struct {
	Mode        string
	Model       string // empty in experimental mode
	TargetFPS   float64
	FrameSkip   int
	Delay       time.Duration
	Concurrency int

	// DurationCutoff limits extraction (seconds, nil = whole video)
	DurationCutoff *float64
}

// ResultInfo contains information about the output video.
type ResultInfo struct {
	OutputPath  string
	Extracted   int
	Retained    int
	Fallbacks   int
	Resized     int
	Width       int
	Height      int
	DurationSec float64
	SpeedFactor float64
	FileSize    int64
}

// StageTiming records how long one stage ran.
type StageTiming struct {
	Name     string
	Duration time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// FromRun starts a Builder filled from a finished run.
func FromRun(r *orchestrator.RunResult) *Builder {
	b := NewBuilder()
	b.summary.RunID = r.RunID
	b.summary.Input = InputInfo{
		Path:        r.SourcePath,
		FPS:         r.Plan.NativeFPS,
		FrameCount:  r.Plan.NativeFrames,
		Width:       r.Plan.Geometry.Width,
		Height:      r.Plan.Geometry.Height,
		DurationSec: nativeDuration(r.Plan.NativeFrames, r.Plan.NativeFPS),
	}
	b.summary.Settings = Settings{
		Mode:           string(r.Mode),
		TargetFPS:      r.Plan.TargetFPS,
		FrameSkip:      r.Plan.FrameSkip,
		DurationCutoff: r.Plan.DurationCutoff,
	}
	b.summary.Result = ResultInfo{
		OutputPath:  r.OutputPath,
		Extracted:   r.Extracted,
		Retained:    r.Retained,
		Fallbacks:   r.Fallbacks,
		Resized:     r.Resized,
		Width:       r.Geometry.Width,
		Height:      r.Geometry.Height,
		DurationSec: r.OutputDuration,
		SpeedFactor: r.Plan.SpeedFactor,
		FileSize:    r.FileSize,
	}
	return b.WithStages(r.StageDurations)
}

// WithInput sets source video information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithSettings sets run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithModel sets the model name and dispatch settings taken from the
// configuration rather than the run result.
func (b *Builder) WithModel(model string, delay time.Duration, concurrency int) *Builder {
	b.summary.Settings.Model = model
	b.summary.Settings.Delay = delay
	b.summary.Settings.Concurrency = concurrency
	return b
}

// WithResult sets output information.
func (b *Builder) WithResult(result ResultInfo) *Builder {
	b.summary.Result = result
	return b
}

// WithStages sets the stage timings, ordered by pipeline position.
func (b *Builder) WithStages(durations map[string]time.Duration) *Builder {
	stages := make([]StageTiming, 0, len(durations))
	for name, d := range durations {
		stages = append(stages, StageTiming{Name: name, Duration: d})
	}
	sort.Slice(stages, func(i, j int) bool {
		return stageRank(stages[i].Name) < stageRank(stages[j].Name)
	})
	b.summary.Stages = stages
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// TotalDuration sums the stage timings.
func (s *Summary) TotalDuration() time.Duration {
	var total time.Duration
	for _, st := range s.Stages {
		total += st.Duration
	}
	return total
}

var stageOrder = []string{
	pipeline.StageExtract,
	pipeline.StageResample,
	pipeline.StageTransform,
	pipeline.StageAssemble,
}

func stageRank(name string) int {
	for i, s := range stageOrder {
		if s == name {
			return i
		}
	}
	return len(stageOrder)
}

func nativeDuration(frames int, fps float64) float64 {
	if frames <= 0 || fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}
