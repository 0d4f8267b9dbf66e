// Package extract implements the frame extraction stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// Stage decodes a source video into a directory of numbered JPEG frames.
type Stage struct {
	decoder  ports.VideoDecoder
	renderer ports.Renderer
	fs       ports.FileSystem
	progress ports.Progress
	logger   ports.Logger
}

// New creates a new extract stage.
func New(decoder ports.VideoDecoder, renderer ports.Renderer, fs ports.FileSystem, progress ports.Progress, logger ports.Logger) *Stage {
	return &Stage{
		decoder:  decoder,
		renderer: renderer,
		fs:       fs,
		progress: progress,
		logger:   logger.WithComponent(pipeline.StageExtract),
	}
}

// Execute extracts frames from input.SourcePath into input.OutputDir.
func (s *Stage) Execute(ctx context.Context, input pipeline.ExtractInput) (pipeline.ExtractResult, error) {
	result := pipeline.ExtractResult{}

	reader, err := s.decoder.Open(ctx, input.SourcePath)
	if err != nil {
		return result, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}
	defer reader.Close()

	meta := reader.Metadata()
	if meta.FPS <= 0 {
		return result, fmt.Errorf("%w: frame rate %v", pipeline.ErrSourceUnreadable, meta.FPS)
	}
	result.Metadata = meta

	limit := input.Limit
	if limit < 0 {
		limit = pipeline.NoFrameLimit
	}
	result.FramesToExtract = limit

	if err := s.fs.MkdirAll(input.OutputDir); err != nil {
		return result, fmt.Errorf("create frame dir: %w", err)
	}
	removed, err := frameset.Clear(s.fs, input.OutputDir)
	if err != nil {
		return result, err
	}
	if removed > 0 {
		s.logger.Debug("Removed %d stale files from %s", removed, input.OutputDir)
	}

	total := limit
	if total == pipeline.NoFrameLimit {
		total = meta.FrameCount
	}
	s.logger.Debug("Extracting up to %d frames at %.2f fps", limit, meta.FPS)

	count := 0
	for limit == pipeline.NoFrameLimit || count < limit {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		img, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if count == 0 {
				return result, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
			}
			s.logger.Warn("Decode stopped after %d frames: %v", count, err)
			break
		}

		data, err := s.renderer.EncodeImage(img, ports.FormatJPEG, input.Quality)
		if err != nil {
			return result, fmt.Errorf("encode frame %d: %w", count, err)
		}
		if err := s.fs.WriteFile(frameset.Path(input.OutputDir, count), data); err != nil {
			return result, fmt.Errorf("write frame %d: %w", count, err)
		}

		count++
		s.progress.Report(pipeline.StageExtract, count, total)
	}

	result.FrameCount = count
	s.logger.Debug("Extracted %d frames", count)
	return result, nil
}
