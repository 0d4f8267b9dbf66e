package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/user/scribbler/pkg/adapters/logger"
	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/mocks"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
	"github.com/user/scribbler/pkg/stages/assemble"
	"github.com/user/scribbler/pkg/stages/extract"
	"github.com/user/scribbler/pkg/stages/resample"
	"github.com/user/scribbler/pkg/stages/transform"
)

// mockStage records its inputs and returns a canned result.
type mockStage[In, Out any] struct {
	mu     sync.Mutex
	result Out
	err    error
	inputs []In
}

func (m *mockStage[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.err != nil {
		var zero Out
		return zero, m.err
	}
	return m.result, nil
}

func (m *mockStage[In, Out]) called() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs) > 0
}

type fixture struct {
	extract   *mockStage[pipeline.ExtractInput, pipeline.ExtractResult]
	resample  *mockStage[pipeline.ResampleInput, pipeline.ResampleResult]
	transform *mockStage[pipeline.TransformInput, pipeline.TransformResult]
	assemble  *mockStage[pipeline.AssembleInput, pipeline.AssembleResult]
	decoder   *mocks.VideoDecoder
	fs        *mocks.FileSystem
	locker    *mocks.Locker
	sink      *mocks.DebugSink
	metrics   *mocks.Metrics
	strategy  pipeline.Strategy
}

func newFixture() *fixture {
	return &fixture{
		extract: &mockStage[pipeline.ExtractInput, pipeline.ExtractResult]{
			result: pipeline.ExtractResult{FrameCount: 60, FramesToExtract: 60},
		},
		resample: &mockStage[pipeline.ResampleInput, pipeline.ResampleResult]{
			result: pipeline.ResampleResult{RetainedCount: 20, Removed: 40},
		},
		transform: &mockStage[pipeline.TransformInput, pipeline.TransformResult]{
			result: pipeline.TransformResult{
				Outcomes:  []pipeline.FrameOutcome{{Index: 0, Source: pipeline.SourcePrimary}, {Index: 1, Source: pipeline.SourceFallback, Cause: "quota"}},
				Fallbacks: 1,
			},
		},
		assemble: &mockStage[pipeline.AssembleInput, pipeline.AssembleResult]{
			result: pipeline.AssembleResult{
				OutputPath:  "output/clip_scribbled.mp4",
				FrameCount:  20,
				Geometry:    pipeline.Dimension{Width: 640, Height: 360},
				DurationSec: 2,
				FileSize:    1234,
			},
		},
		decoder: &mocks.VideoDecoder{
			Metadata: ports.VideoMetadata{FPS: 30, FrameCount: 60, Width: 640, Height: 360, Codec: "h264"},
		},
		fs:      mocks.NewFileSystem(),
		locker:  &mocks.Locker{},
		sink:    mocks.NewDebugSink(true),
		metrics: mocks.NewMetrics(),
		strategy: pipeline.Strategy{
			Mode:        pipeline.ModeAI,
			Primary:     &mocks.FrameTransformer{},
			Fallback:    &mocks.FrameTransformer{},
			Concurrency: 5,
			Throttled:   true,
		},
	}
}

func (f *fixture) build() *Orchestrator {
	return New(
		Stages{Extract: f.extract, Resample: f.resample, Transform: f.transform, Assemble: f.assemble},
		f.decoder, f.strategy, f.fs, f.locker, f.sink, f.metrics, logger.NewNoop(), DefaultConfig(),
	)
}

func validRequest() Request {
	return Request{
		SourcePath: "input/clip.mp4",
		OutputPath: "output/clip_scribbled.mp4",
		TargetFPS:  10,
	}
}

func TestOrchestrator_Run(t *testing.T) {
	f := newFixture()
	orch := f.build()

	var transitions []State
	orch.OnStateChange(func(from, to State) {
		transitions = append(transitions, to)
	})

	cutoff := 2.0
	req := validRequest()
	req.DurationCutoff = &cutoff

	result, err := orch.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantStates := []State{StateExtracting, StateResampling, StateTransforming, StateAssembling, StateCleaningUp, StateDone}
	if len(transitions) != len(wantStates) {
		t.Fatalf("transitions = %v, want %v", transitions, wantStates)
	}
	for i := range wantStates {
		if transitions[i] != wantStates[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], wantStates[i])
		}
	}
	if orch.State() != StateDone {
		t.Errorf("State = %s, want done", orch.State())
	}

	// Stage inputs come from one plan.
	ext := f.extract.inputs[0]
	if ext.SourcePath != req.SourcePath || ext.OutputDir != "temp/original" {
		t.Errorf("extract input = %+v", ext)
	}
	if ext.Limit != result.Plan.FramesToExtract || ext.Limit != 60 {
		t.Errorf("extract limit = %d, want plan's %d", ext.Limit, result.Plan.FramesToExtract)
	}
	if got := f.resample.inputs[0].Skip; got != 3 {
		t.Errorf("resample skip = %d, want 3", got)
	}
	tin := f.transform.inputs[0]
	if tin.InputDir != "temp/original" || tin.OutputDir != "temp/scribbled" || tin.Strategy.Mode != pipeline.ModeAI {
		t.Errorf("transform input = %+v", tin)
	}
	ain := f.assemble.inputs[0]
	if ain.FPS != 10 {
		t.Errorf("assemble fps = %v, want 10", ain.FPS)
	}
	if ain.Geometry == nil || *ain.Geometry != (pipeline.Dimension{Width: 640, Height: 360}) {
		t.Errorf("assemble geometry = %v, want source geometry", ain.Geometry)
	}
	if ain.Codec != "mp4v" {
		t.Errorf("assemble codec = %q, want mp4v", ain.Codec)
	}

	if result.RunID == "" {
		t.Error("expected run id")
	}
	if result.Plan.FramesToExtract != 60 || result.Plan.RetainedCount != 20 {
		t.Errorf("plan = %+v", result.Plan)
	}
	if result.Extracted != 60 || result.Retained != 20 || result.Fallbacks != 1 {
		t.Errorf("counts = %d/%d/%d, want 60/20/1", result.Extracted, result.Retained, result.Fallbacks)
	}
	if result.FileSize != 1234 || result.OutputDuration != 2 {
		t.Errorf("output = %d bytes %vs", result.FileSize, result.OutputDuration)
	}
	if len(result.StageDurations) != 4 {
		t.Errorf("stage durations = %v, want 4 entries", result.StageDurations)
	}

	if !f.locker.Unlocked {
		t.Error("expected lock to be released")
	}
	if f.metrics.Runs["done"] != 1 {
		t.Errorf("runs metric = %v", f.metrics.Runs)
	}
	if len(f.metrics.Stages) != 4 {
		t.Errorf("stage metrics = %v", f.metrics.Stages)
	}

	var plan pipeline.Plan
	if err := json.Unmarshal(f.sink.PlanJSON, &plan); err != nil {
		t.Fatalf("plan.json: %v", err)
	}
	if plan.FrameSkip != 3 {
		t.Errorf("saved plan skip = %d, want 3", plan.FrameSkip)
	}
	if len(f.sink.MetadataJSON) == 0 || len(f.sink.OutcomesJSON) == 0 {
		t.Error("expected metadata and outcomes debug output")
	}
}

func TestOrchestrator_Run_NativeRate(t *testing.T) {
	f := newFixture()
	orch := f.build()

	req := validRequest()
	req.TargetFPS = 0
	if _, err := orch.Run(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.resample.inputs[0].Skip; got != 1 {
		t.Errorf("skip = %d, want 1", got)
	}
	if got := f.assemble.inputs[0].FPS; got != 30 {
		t.Errorf("assemble fps = %v, want 30", got)
	}
}

func TestOrchestrator_Run_InvalidRequests(t *testing.T) {
	neg := -1.0
	tooLong := 10.0
	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{"negative delay", func(r *Request) { r.Delay = -1 }, pipeline.ErrInvalidRequest},
		{"negative fps", func(r *Request) { r.TargetFPS = -5 }, pipeline.ErrInvalidRequest},
		{"fps above native", func(r *Request) { r.TargetFPS = 60 }, pipeline.ErrInvalidRequest},
		{"negative cutoff", func(r *Request) { r.DurationCutoff = &neg }, pipeline.ErrInvalidRequest},
		{"cutoff beyond source", func(r *Request) { r.DurationCutoff = &tooLong }, pipeline.ErrInvalidRequest},
		{"missing source", func(r *Request) { r.SourcePath = "" }, pipeline.ErrInvalidRequest},
		{"missing output", func(r *Request) { r.OutputPath = "" }, pipeline.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			orch := f.build()

			req := validRequest()
			tt.mutate(&req)
			_, err := orch.Run(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if f.extract.called() {
				t.Error("extract must not run for an invalid request")
			}
			if orch.State() != StateFailed {
				t.Errorf("State = %s, want failed", orch.State())
			}
			if f.metrics.Runs["failed"] != 1 {
				t.Errorf("runs metric = %v", f.metrics.Runs)
			}
		})
	}
}

func TestOrchestrator_Run_ProbeFailure(t *testing.T) {
	f := newFixture()
	f.decoder.ProbeFunc = func(ctx context.Context, path string) (ports.VideoMetadata, error) {
		return ports.VideoMetadata{}, errors.New("moov atom not found")
	}
	orch := f.build()

	_, err := orch.Run(context.Background(), validRequest())
	if !errors.Is(err, pipeline.ErrSourceUnreadable) {
		t.Errorf("error = %v, want ErrSourceUnreadable", err)
	}
}

func TestOrchestrator_Run_ZeroFPS(t *testing.T) {
	f := newFixture()
	f.decoder.Metadata.FPS = 0
	orch := f.build()

	_, err := orch.Run(context.Background(), validRequest())
	if !errors.Is(err, pipeline.ErrSourceUnreadable) {
		t.Errorf("error = %v, want ErrSourceUnreadable", err)
	}
}

func TestOrchestrator_Run_LockBusy(t *testing.T) {
	f := newFixture()
	f.locker.TryLockFunc = func() (bool, error) { return false, nil }
	orch := f.build()

	_, err := orch.Run(context.Background(), validRequest())
	if !errors.Is(err, pipeline.ErrWorkspaceBusy) {
		t.Errorf("error = %v, want ErrWorkspaceBusy", err)
	}
	if len(f.decoder.ProbeCalls) != 0 {
		t.Error("probe must not run without the lock")
	}
}

func TestOrchestrator_Run_StageFailures(t *testing.T) {
	stageErr := errors.New("stage broke")
	tests := []struct {
		name       string
		breakStage func(f *fixture)
		state      State
	}{
		{"extract", func(f *fixture) { f.extract.err = stageErr }, StateExtracting},
		{"resample", func(f *fixture) { f.resample.err = stageErr }, StateResampling},
		{"transform", func(f *fixture) { f.transform.err = stageErr }, StateTransforming},
		{"assemble", func(f *fixture) { f.assemble.err = stageErr }, StateAssembling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.breakStage(f)
			// Leftover frames must survive a failed run.
			f.fs.WriteFile(frameset.Path("temp/original", 0), []byte("frame"))
			orch := f.build()

			var last State
			orch.OnStateChange(func(from, to State) {
				if to == StateFailed {
					last = from
				}
			})

			_, err := orch.Run(context.Background(), validRequest())
			if !errors.Is(err, stageErr) {
				t.Fatalf("error = %v, want stage error", err)
			}
			if orch.State() != StateFailed {
				t.Errorf("State = %s, want failed", orch.State())
			}
			if last != tt.state {
				t.Errorf("failed from %s, want %s", last, tt.state)
			}
			if f.fs.FilesIn("temp/original") != 1 {
				t.Error("workspace must be left alone on failure")
			}
			if !f.locker.Unlocked {
				t.Error("expected lock to be released after failure")
			}
		})
	}
}

func TestOrchestrator_Cleanup(t *testing.T) {
	f := newFixture()
	for i := 0; i < 3; i++ {
		f.fs.WriteFile(frameset.Path("temp/original", i), []byte("o"))
		f.fs.WriteFile(frameset.Path("temp/scribbled", i), []byte("s"))
	}
	orch := f.build()

	if err := orch.Cleanup(context.Background()); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if f.fs.FilesIn("temp/original") != 0 || f.fs.FilesIn("temp/scribbled") != 0 {
		t.Error("expected both workspaces to be empty")
	}

	// Idempotent.
	if err := orch.Cleanup(context.Background()); err != nil {
		t.Fatalf("second Cleanup failed: %v", err)
	}
}

func TestOrchestrator_Cleanup_Busy(t *testing.T) {
	f := newFixture()
	f.locker.TryLockFunc = func() (bool, error) { return false, nil }
	orch := f.build()

	if err := orch.Cleanup(context.Background()); !errors.Is(err, pipeline.ErrWorkspaceBusy) {
		t.Errorf("error = %v, want ErrWorkspaceBusy", err)
	}
}

func TestOrchestrator_Run_SuccessClearsWorkspaces(t *testing.T) {
	f := newFixture()
	f.fs.WriteFile(frameset.Path("temp/original", 0), []byte("o"))
	f.fs.WriteFile(frameset.Path("temp/scribbled", 0), []byte("s"))
	orch := f.build()

	if _, err := orch.Run(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.fs.FilesIn("temp/original") != 0 || f.fs.FilesIn("temp/scribbled") != 0 {
		t.Error("expected workspaces to be cleared after success")
	}
}

// TestOrchestrator_Run_RealStages wires the real stages to mock adapters.
func TestOrchestrator_Run_RealStages(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	decoder := &mocks.VideoDecoder{
		Metadata: ports.VideoMetadata{FPS: 30, FrameCount: 12, Width: 16, Height: 16},
		Frames:   12,
	}
	encoder := &mocks.VideoEncoder{}
	progress := &mocks.Progress{}
	metrics := mocks.NewMetrics()
	log := logger.NewNoop()

	calls := 0
	var mu sync.Mutex
	primary := &mocks.FrameTransformer{
		TransformFunc: func(ctx context.Context, img image.Image) (image.Image, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls%3 == 0 {
				return nil, errors.New("model unavailable")
			}
			return img, nil
		},
	}
	strategy := pipeline.Strategy{
		Mode:        pipeline.ModeAI,
		Primary:     primary,
		Fallback:    &mocks.FrameTransformer{},
		Concurrency: 2,
	}

	orch := New(
		Stages{
			Extract:   extract.New(decoder, renderer, fs, progress, log),
			Resample:  resample.New(fs, progress, log),
			Transform: transform.New(renderer, fs, progress, metrics, log),
			Assemble:  assemble.New(encoder, renderer, fs, progress, log),
		},
		decoder, strategy, fs, &mocks.Locker{}, mocks.NewDebugSink(false), metrics, log, DefaultConfig(),
	)

	result, err := orch.Run(context.Background(), Request{
		SourcePath: "input/clip.mp4",
		OutputPath: "output/clip_scribbled.mp4",
		TargetFPS:  15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Extracted != 12 || result.Retained != 6 {
		t.Errorf("extracted/retained = %d/%d, want 12/6", result.Extracted, result.Retained)
	}
	if result.Fallbacks != 2 {
		t.Errorf("Fallbacks = %d, want 2", result.Fallbacks)
	}
	if len(encoder.EncodeFrameCalls) != 6 {
		t.Errorf("encoded frames = %d, want 6", len(encoder.EncodeFrameCalls))
	}
	if encoder.BeginArgs.FPS != 15 || encoder.BeginArgs.Width != 16 {
		t.Errorf("Begin args = %+v", encoder.BeginArgs)
	}
	if result.OutputDuration != 0.4 {
		t.Errorf("OutputDuration = %v, want 0.4", result.OutputDuration)
	}
	if _, ok := fs.GetFile("output/clip_scribbled.mp4"); !ok {
		t.Error("expected output video")
	}
	if fs.FilesIn("temp/original") != 0 || fs.FilesIn("temp/scribbled") != 0 {
		t.Error("expected workspaces to be cleaned")
	}
	if metrics.Frames["primary"] != 4 || metrics.Frames["fallback"] != 2 {
		t.Errorf("frame metrics = %v", metrics.Frames)
	}
}

func TestOrchestrator_Run_IgnoresStaleScribbledFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	for i := 0; i < 10; i++ {
		fs.WriteFile(frameset.Path("temp/scribbled", i), []byte("stale"))
	}
	renderer := &mocks.Renderer{}
	decoder := &mocks.VideoDecoder{
		Metadata: ports.VideoMetadata{FPS: 30, FrameCount: 12, Width: 16, Height: 16},
		Frames:   12,
	}
	encoder := &mocks.VideoEncoder{}
	progress := &mocks.Progress{}
	metrics := mocks.NewMetrics()
	log := logger.NewNoop()
	strategy := pipeline.Strategy{
		Mode:        pipeline.ModeAI,
		Primary:     &mocks.FrameTransformer{},
		Fallback:    &mocks.FrameTransformer{},
		Concurrency: 2,
	}

	orch := New(
		Stages{
			Extract:   extract.New(decoder, renderer, fs, progress, log),
			Resample:  resample.New(fs, progress, log),
			Transform: transform.New(renderer, fs, progress, metrics, log),
			Assemble:  assemble.New(encoder, renderer, fs, progress, log),
		},
		decoder, strategy, fs, &mocks.Locker{}, mocks.NewDebugSink(false), metrics, log, DefaultConfig(),
	)

	result, err := orch.Run(context.Background(), Request{
		SourcePath: "input/clip.mp4",
		OutputPath: "output/clip_scribbled.mp4",
		TargetFPS:  15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Retained != 6 {
		t.Errorf("Retained = %d, want 6", result.Retained)
	}
	if len(encoder.EncodeFrameCalls) != 6 {
		t.Errorf("encoded frames = %d, want 6 retained", len(encoder.EncodeFrameCalls))
	}
	if result.OutputDuration != 0.4 {
		t.Errorf("OutputDuration = %v, want 0.4", result.OutputDuration)
	}
}
