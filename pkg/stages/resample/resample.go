// Package resample implements the frame-rate resampling stage.
package resample

import (
	"context"
	"fmt"

	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// Stage keeps every Skip-th frame of a frame set and renumbers the survivors.
type Stage struct {
	fs       ports.FileSystem
	progress ports.Progress
	logger   ports.Logger
}

// New creates a new resample stage.
func New(fs ports.FileSystem, progress ports.Progress, logger ports.Logger) *Stage {
	return &Stage{
		fs:       fs,
		progress: progress,
		logger:   logger.WithComponent(pipeline.StageResample),
	}
}

// Execute subsamples input.Dir in place.
func (s *Stage) Execute(ctx context.Context, input pipeline.ResampleInput) (pipeline.ResampleResult, error) {
	frames, err := frameset.List(s.fs, input.Dir)
	if err != nil {
		return pipeline.ResampleResult{}, err
	}

	if input.Skip <= 1 {
		s.logger.Debug("Skip is %d, keeping all %d frames", input.Skip, len(frames))
		s.progress.Report(pipeline.StageResample, len(frames), len(frames))
		return pipeline.ResampleResult{RetainedCount: len(frames)}, nil
	}

	removed := 0
	for pos, f := range frames {
		if err := ctx.Err(); err != nil {
			return pipeline.ResampleResult{}, err
		}
		if pos%input.Skip == 0 {
			continue
		}
		if err := s.fs.Remove(f.Path); err != nil {
			return pipeline.ResampleResult{}, fmt.Errorf("remove frame %d: %w", f.Index, err)
		}
		removed++
	}

	retained, err := frameset.Renumber(s.fs, input.Dir)
	if err != nil {
		return pipeline.ResampleResult{}, err
	}

	s.logger.Debug("Kept every %d frame: %d retained, %d removed", input.Skip, retained, removed)
	s.progress.Report(pipeline.StageResample, retained, retained)
	return pipeline.ResampleResult{RetainedCount: retained, Removed: removed}, nil
}
