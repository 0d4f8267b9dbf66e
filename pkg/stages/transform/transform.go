// Package transform implements the concurrent frame transform stage.
//
// Every frame is first given to the strategy's primary transformer. If that
// fails, panics or returns nothing, the fallback runs on the original frame,
// so each input frame yields exactly one output frame.
package transform

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// errNoImage is reported when a transformer returns a nil image without an error.
var errNoImage = errors.New("transformer returned no image")

// Stage dispatches frames to transformers on a worker pool.
type Stage struct {
	renderer ports.Renderer
	fs       ports.FileSystem
	progress ports.Progress
	metrics  ports.Metrics
	logger   ports.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Stage.
type Option func(*Stage)

// WithSleeper replaces the throttle delay, mainly for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Stage) {
		s.sleep = sleep
	}
}

// New creates a new transform stage.
func New(renderer ports.Renderer, fs ports.FileSystem, progress ports.Progress, metrics ports.Metrics, logger ports.Logger, opts ...Option) *Stage {
	s := &Stage{
		renderer: renderer,
		fs:       fs,
		progress: progress,
		metrics:  metrics,
		logger:   logger.WithComponent(pipeline.StageTransform),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// taskResult carries one frame outcome, or the error that aborts the stage.
type taskResult struct {
	outcome pipeline.FrameOutcome
	err     error
}

// Execute transforms every frame in input.InputDir into input.OutputDir.
func (s *Stage) Execute(ctx context.Context, input pipeline.TransformInput) (pipeline.TransformResult, error) {
	strategy := input.Strategy
	if strategy.Primary == nil || strategy.Fallback == nil {
		return pipeline.TransformResult{}, fmt.Errorf("%w: transform strategy needs primary and fallback", pipeline.ErrConfiguration)
	}

	frames, err := frameset.List(s.fs, input.InputDir)
	if err != nil {
		return pipeline.TransformResult{}, err
	}
	if len(frames) == 0 {
		return pipeline.TransformResult{}, pipeline.ErrEmptyFrameSet
	}
	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return pipeline.TransformResult{}, fmt.Errorf("create output dir: %w", err)
	}
	removed, err := frameset.Clear(s.fs, input.OutputDir)
	if err != nil {
		return pipeline.TransformResult{}, err
	}
	if removed > 0 {
		s.logger.Debug("Removed %d stale files from %s", removed, input.OutputDir)
	}

	numWorkers := strategy.Concurrency
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > len(frames) {
		numWorkers = len(frames)
	}
	s.logger.Debug("Transforming %d frames with %d workers (%s mode)", len(frames), numWorkers, strategy.Mode)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, len(frames))
	results := make(chan taskResult, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go s.worker(ctx, &wg, input, frames, jobs, results)
	}

	for i := range frames {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single collector: progress is reported in completion order.
	outcomes := make([]pipeline.FrameOutcome, 0, len(frames))
	fallbacks := 0
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		outcomes = append(outcomes, r.outcome)
		if r.outcome.Source == pipeline.SourceFallback {
			fallbacks++
		}
		s.metrics.FrameTransformed(string(r.outcome.Source))
		s.progress.Report(pipeline.StageTransform, len(outcomes), len(frames))
	}

	if firstErr != nil {
		return pipeline.TransformResult{}, firstErr
	}
	if len(outcomes) != len(frames) {
		if err := ctx.Err(); err != nil {
			return pipeline.TransformResult{}, err
		}
		return pipeline.TransformResult{}, fmt.Errorf("transformed %d of %d frames", len(outcomes), len(frames))
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Index < outcomes[j].Index
	})

	s.logger.Debug("Transform completed: %d frames, %d fallbacks", len(outcomes), fallbacks)
	return pipeline.TransformResult{Outcomes: outcomes, Fallbacks: fallbacks}, nil
}

// worker processes frame positions from the jobs channel.
func (s *Stage) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	input pipeline.TransformInput,
	frames []pipeline.Frame,
	jobs <-chan int,
	results chan<- taskResult,
) {
	defer wg.Done()

	for pos := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome, err := s.processFrame(ctx, input, frames[pos])
		results <- taskResult{outcome: outcome, err: err}
		if err != nil {
			return
		}
	}
}

// processFrame runs one frame through primary, throttle and fallback, then writes it.
func (s *Stage) processFrame(ctx context.Context, input pipeline.TransformInput, frame pipeline.Frame) (pipeline.FrameOutcome, error) {
	outcome := pipeline.FrameOutcome{Index: frame.Index, Source: pipeline.SourcePrimary}

	data, err := s.fs.ReadFile(frame.Path)
	if err != nil {
		return outcome, fmt.Errorf("read frame %d: %w", frame.Index, err)
	}
	img, err := s.renderer.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		return outcome, fmt.Errorf("decode frame %d: %w", frame.Index, err)
	}

	out, primaryErr := safeTransform(ctx, input.Strategy.Primary, img)

	if input.Strategy.Throttled && input.Delay > 0 {
		if err := s.sleep(ctx, input.Delay); err != nil {
			return outcome, err
		}
	}

	if primaryErr != nil {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		terr := &pipeline.TransformError{Index: frame.Index, Err: primaryErr}
		s.logger.Warn("%v, using fallback", terr)

		out, err = safeTransform(ctx, input.Strategy.Fallback, img)
		if err != nil {
			return outcome, fmt.Errorf("fallback frame %d: %w", frame.Index, err)
		}
		outcome.Source = pipeline.SourceFallback
		outcome.Cause = primaryErr.Error()
	}

	encoded, err := s.renderer.EncodeImage(out, ports.FormatJPEG, input.Quality)
	if err != nil {
		return outcome, fmt.Errorf("encode frame %d: %w", frame.Index, err)
	}
	if err := s.fs.WriteFile(frameset.Path(input.OutputDir, frame.Index), encoded); err != nil {
		return outcome, fmt.Errorf("write frame %d: %w", frame.Index, err)
	}
	return outcome, nil
}

// safeTransform calls t and turns a panic or a nil image into an error.
func safeTransform(ctx context.Context, t ports.FrameTransformer, img image.Image) (out image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("transformer panic: %v", r)
		}
	}()

	out, err = t.Transform(ctx, img)
	if err == nil && out == nil {
		err = errNoImage
	}
	return out, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
