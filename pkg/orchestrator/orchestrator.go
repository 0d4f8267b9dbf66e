// Package orchestrator coordinates all pipeline stages.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// State is the coordinator's position in a run.
type State string

const (
	StateIdle         State = "idle"
	StateExtracting   State = "extracting"
	StateResampling   State = "resampling"
	StateTransforming State = "transforming"
	StateAssembling   State = "assembling"
	StateCleaningUp   State = "cleaning_up"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Config holds the workspace layout and encoding settings shared by every run.
type Config struct {
	OriginalDir    string
	TransformedDir string
	FrameQuality   int // JPEG quality of workspace frames
	Codec          string
	VideoQuality   int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OriginalDir:    "temp/original",
		TransformedDir: "temp/scribbled",
		FrameQuality:   95,
		Codec:          "mp4v",
		VideoQuality:   3,
	}
}

// Request describes one processing run.
type Request struct {
	SourcePath     string
	OutputPath     string
	DurationCutoff *float64 // seconds; nil processes the whole video
	TargetFPS      float64  // 0 keeps the native rate
	Delay          time.Duration
}

// Stages groups the four pipeline stages in execution order.
type Stages struct {
	Extract   pipeline.Stage[pipeline.ExtractInput, pipeline.ExtractResult]
	Resample  pipeline.Stage[pipeline.ResampleInput, pipeline.ResampleResult]
	Transform pipeline.Stage[pipeline.TransformInput, pipeline.TransformResult]
	Assemble  pipeline.Stage[pipeline.AssembleInput, pipeline.AssembleResult]
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	stages   Stages
	decoder  ports.VideoDecoder
	strategy pipeline.Strategy
	fs       ports.FileSystem
	locker   ports.Locker
	sink     ports.DebugSink
	metrics  ports.Metrics
	logger   ports.Logger
	config   Config

	mu            sync.Mutex
	running       bool
	state         State
	onStateChange func(from, to State)
}

// New creates a new Orchestrator.
func New(
	stages Stages,
	decoder ports.VideoDecoder,
	strategy pipeline.Strategy,
	fs ports.FileSystem,
	locker ports.Locker,
	sink ports.DebugSink,
	metrics ports.Metrics,
	logger ports.Logger,
	config Config,
) *Orchestrator {
	return &Orchestrator{
		stages:   stages,
		decoder:  decoder,
		strategy: strategy,
		fs:       fs,
		locker:   locker,
		sink:     sink,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		state:    StateIdle,
	}
}

// OnStateChange registers a hook called on every state transition.
func (o *Orchestrator) OnStateChange(fn func(from, to State)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onStateChange = fn
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(to State) {
	o.mu.Lock()
	from := o.state
	o.state = to
	hook := o.onStateChange
	o.mu.Unlock()

	if hook != nil && from != to {
		hook(from, to)
	}
}

// begin marks the coordinator busy. Runs and cleanups never overlap.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return pipeline.ErrWorkspaceBusy
	}
	o.running = true
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.running = false
	o.mu.Unlock()
}

// Run executes the complete pipeline.
func (o *Orchestrator) Run(ctx context.Context, req Request) (RunResult, error) {
	result := RunResult{
		RunID:          uuid.NewString(),
		Mode:           o.strategy.Mode,
		SourcePath:     req.SourcePath,
		StageDurations: make(map[string]time.Duration),
	}

	if err := o.begin(); err != nil {
		return result, err
	}
	defer o.end()

	if err := validateRequest(req); err != nil {
		return o.fail(result, err)
	}

	ok, err := o.locker.TryLock()
	if err != nil {
		return o.fail(result, fmt.Errorf("workspace lock: %w", err))
	}
	if !ok {
		return o.fail(result, pipeline.ErrWorkspaceBusy)
	}
	defer func() {
		if err := o.locker.Unlock(); err != nil {
			o.logger.Warn("Failed to release workspace lock: %s", err)
		}
	}()

	o.logger.Info("Starting run %s (%s mode)", result.RunID, o.strategy.Mode)

	// 1. Probe and plan
	meta, err := o.decoder.Probe(ctx, req.SourcePath)
	if err != nil {
		return o.fail(result, fmt.Errorf("%w: %w", pipeline.ErrSourceUnreadable, err))
	}
	o.saveJSON(meta, o.sink.SaveMetadataJSON)

	plan, err := pipeline.NewPlan(meta, req.DurationCutoff, req.TargetFPS)
	if err != nil {
		return o.fail(result, err)
	}
	result.Plan = plan
	o.logger.Info("Source: %s, %.2f fps, %d frames", plan.Geometry, plan.NativeFPS, plan.NativeFrames)
	o.logger.Info("Plan: extract %d frames, keep every %d, output %.2f fps (%.2fs)",
		plan.FramesToExtract, plan.FrameSkip, plan.TargetFPS, plan.OutputDuration)
	o.saveJSON(plan, o.sink.SavePlanJSON)

	// 2. Extract frames
	o.setState(StateExtracting)
	o.logger.Info("Extracting frames")
	start := time.Now()
	extracted, err := o.stages.Extract.Execute(ctx, pipeline.ExtractInput{
		SourcePath: req.SourcePath,
		OutputDir:  o.config.OriginalDir,
		Limit:      plan.FramesToExtract,
		Quality:    o.config.FrameQuality,
	})
	o.observe(&result, pipeline.StageExtract, start)
	if err != nil {
		o.logger.Error("Failed to extract frames: %s", err)
		return o.fail(result, fmt.Errorf("extract stage: %w", err))
	}
	result.Extracted = extracted.FrameCount
	if plan.FramesToExtract != pipeline.NoFrameLimit && extracted.FrameCount < plan.FramesToExtract {
		o.logger.Warn("Extracted %d of %d planned frames", extracted.FrameCount, plan.FramesToExtract)
	} else {
		o.logger.Info("Extracted %d frames", extracted.FrameCount)
	}

	// 3. Resample
	o.setState(StateResampling)
	start = time.Now()
	resampled, err := o.stages.Resample.Execute(ctx, pipeline.ResampleInput{
		Dir:  o.config.OriginalDir,
		Skip: plan.FrameSkip,
	})
	o.observe(&result, pipeline.StageResample, start)
	if err != nil {
		o.logger.Error("Failed to resample frames: %s", err)
		return o.fail(result, fmt.Errorf("resample stage: %w", err))
	}
	result.Retained = resampled.RetainedCount
	if resampled.Removed > 0 {
		o.logger.Info("Kept %d frames at %.2f fps", resampled.RetainedCount, plan.TargetFPS)
	}

	// 4. Transform
	o.setState(StateTransforming)
	o.logger.Info("Transforming %d frames", resampled.RetainedCount)
	start = time.Now()
	transformed, err := o.stages.Transform.Execute(ctx, pipeline.TransformInput{
		InputDir:  o.config.OriginalDir,
		OutputDir: o.config.TransformedDir,
		Strategy:  o.strategy,
		Delay:     req.Delay,
		Quality:   o.config.FrameQuality,
	})
	o.observe(&result, pipeline.StageTransform, start)
	if err != nil {
		o.logger.Error("Failed to transform frames: %s", err)
		return o.fail(result, fmt.Errorf("transform stage: %w", err))
	}
	result.Fallbacks = transformed.Fallbacks
	result.Outcomes = transformed.Outcomes
	if transformed.Fallbacks > 0 {
		o.logger.Warn("%d of %d frames used the fallback transformer", transformed.Fallbacks, len(transformed.Outcomes))
	}
	o.saveJSON(transformed.Outcomes, o.sink.SaveOutcomesJSON)

	// 5. Assemble
	o.setState(StateAssembling)
	o.logger.Info("Assembling video at %.2f fps", plan.TargetFPS)
	var geometry *pipeline.Dimension
	if plan.Geometry.Width > 0 && plan.Geometry.Height > 0 {
		g := plan.Geometry
		geometry = &g
	}
	start = time.Now()
	assembled, err := o.stages.Assemble.Execute(ctx, pipeline.AssembleInput{
		FramesDir:  o.config.TransformedDir,
		OutputPath: req.OutputPath,
		FPS:        plan.TargetFPS,
		Geometry:   geometry,
		Codec:      o.config.Codec,
		Quality:    o.config.VideoQuality,
	})
	o.observe(&result, pipeline.StageAssemble, start)
	if err != nil {
		o.logger.Error("Failed to assemble video: %s", err)
		return o.fail(result, fmt.Errorf("assemble stage: %w", err))
	}
	result.OutputPath = assembled.OutputPath
	result.FileSize = assembled.FileSize
	result.OutputDuration = assembled.DurationSec
	result.Geometry = assembled.Geometry
	result.Resized = assembled.Resized

	// 6. Clean up workspaces
	o.setState(StateCleaningUp)
	if err := o.clearWorkspaces(); err != nil {
		o.logger.Warn("Failed to clean up workspaces: %s", err)
	}

	o.setState(StateDone)
	o.metrics.RunFinished(string(StateDone))
	o.logger.Info("Output saved to %s", result.OutputPath)
	return result, nil
}

// Cleanup removes every file from both frame workspaces. It may be called
// at any time outside a run and repeatedly.
func (o *Orchestrator) Cleanup(ctx context.Context) error {
	if err := o.begin(); err != nil {
		return err
	}
	defer o.end()

	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := o.locker.TryLock()
	if err != nil {
		return fmt.Errorf("workspace lock: %w", err)
	}
	if !ok {
		return pipeline.ErrWorkspaceBusy
	}
	defer o.locker.Unlock()

	return o.clearWorkspaces()
}

func (o *Orchestrator) clearWorkspaces() error {
	for _, dir := range []string{o.config.OriginalDir, o.config.TransformedDir} {
		n, err := frameset.Clear(o.fs, dir)
		if err != nil {
			return err
		}
		if n > 0 {
			o.logger.Debug("Removed %d files from %s", n, dir)
		}
	}
	return nil
}

func (o *Orchestrator) fail(result RunResult, err error) (RunResult, error) {
	o.setState(StateFailed)
	o.metrics.RunFinished(string(StateFailed))
	return result, err
}

func (o *Orchestrator) observe(result *RunResult, stage string, start time.Time) {
	d := time.Since(start)
	result.StageDurations[stage] = d
	o.metrics.StageDuration(stage, d)
}

func (o *Orchestrator) saveJSON(v any, save func([]byte) error) {
	if !o.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	if err := save(data); err != nil {
		o.logger.Warn("Failed to write debug output: %s", err)
	}
}

func validateRequest(req Request) error {
	if req.SourcePath == "" {
		return fmt.Errorf("%w: source path is required", pipeline.ErrInvalidRequest)
	}
	if req.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", pipeline.ErrInvalidRequest)
	}
	if req.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative, got %s", pipeline.ErrInvalidRequest, req.Delay)
	}
	if req.TargetFPS < 0 {
		return fmt.Errorf("%w: target fps must not be negative, got %v", pipeline.ErrInvalidRequest, req.TargetFPS)
	}
	if req.DurationCutoff != nil && *req.DurationCutoff <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", pipeline.ErrInvalidRequest, *req.DurationCutoff)
	}
	return nil
}

// RunResult contains the results of a pipeline run for summary generation.
type RunResult struct {
	RunID      string
	Mode       pipeline.Mode
	SourcePath string
	Plan       pipeline.Plan

	// Frame counts
	Extracted int
	Retained  int
	Fallbacks int
	Resized   int
	Outcomes  []pipeline.FrameOutcome

	// Output video
	OutputPath     string
	FileSize       int64
	OutputDuration float64 // seconds
	Geometry       pipeline.Dimension

	StageDurations map[string]time.Duration
}

// TotalDuration sums the recorded stage durations.
func (r RunResult) TotalDuration() time.Duration {
	var total time.Duration
	for _, d := range r.StageDurations {
		total += d
	}
	return total
}
