// Package assemble implements the video assembly stage.
package assemble

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// DefaultCodec is the four-character code written into the container.
const DefaultCodec = "mp4v"

// Stage encodes a directory of frames into a video file.
type Stage struct {
	encoder  ports.VideoEncoder
	renderer ports.Renderer
	fs       ports.FileSystem
	progress ports.Progress
	logger   ports.Logger
}

// New creates a new assemble stage.
func New(encoder ports.VideoEncoder, renderer ports.Renderer, fs ports.FileSystem, progress ports.Progress, logger ports.Logger) *Stage {
	return &Stage{
		encoder:  encoder,
		renderer: renderer,
		fs:       fs,
		progress: progress,
		logger:   logger.WithComponent(pipeline.StageAssemble),
	}
}

// Execute encodes the frames in input.FramesDir, in index order, into input.OutputPath.
func (s *Stage) Execute(ctx context.Context, input pipeline.AssembleInput) (pipeline.AssembleResult, error) {
	result := pipeline.AssembleResult{OutputPath: input.OutputPath}

	if input.FPS <= 0 {
		return result, fmt.Errorf("%w: output fps must be positive, got %v", pipeline.ErrInvalidRequest, input.FPS)
	}

	frames, err := frameset.List(s.fs, input.FramesDir)
	if err != nil {
		return result, err
	}
	if len(frames) == 0 {
		return result, pipeline.ErrEmptyFrameSet
	}

	first, err := s.loadFrame(frames[0])
	if err != nil {
		return result, err
	}

	geometry := pipeline.Dimension{Width: first.Bounds().Dx(), Height: first.Bounds().Dy()}
	if input.Geometry != nil && input.Geometry.Width > 0 && input.Geometry.Height > 0 {
		geometry = *input.Geometry
	}
	geometry = evenSize(geometry)
	result.Geometry = geometry

	codec := input.Codec
	if codec == "" {
		codec = DefaultCodec
	}
	opts := ports.EncoderOptions{Codec: codec, Quality: input.Quality}
	if err := s.encoder.Begin(geometry.Width, geometry.Height, input.FPS, opts); err != nil {
		return result, fmt.Errorf("%w: begin encoding: %w", pipeline.ErrEncodingFailed, err)
	}
	s.logger.Debug("Encoding %d frames at %s, %.2f fps", len(frames), geometry, input.FPS)

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			s.abort()
			return result, err
		}

		img := first
		if i > 0 {
			if img, err = s.loadFrame(f); err != nil {
				s.abort()
				return result, err
			}
		}

		b := img.Bounds()
		if b.Dx() != geometry.Width || b.Dy() != geometry.Height {
			img = s.renderer.ResizeImage(img, geometry.Width, geometry.Height)
			result.Resized++
		}

		if err := s.encoder.EncodeFrame(img); err != nil {
			s.abort()
			return result, fmt.Errorf("%w: encode frame %d: %w", pipeline.ErrEncodingFailed, f.Index, err)
		}
		s.progress.Report(pipeline.StageAssemble, i+1, len(frames))
	}

	data, err := s.encoder.End()
	if err != nil {
		return result, fmt.Errorf("%w: end encoding: %w", pipeline.ErrEncodingFailed, err)
	}

	if dir := filepath.Dir(input.OutputPath); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return result, fmt.Errorf("%w: create output dir: %w", pipeline.ErrEncodingFailed, err)
		}
	}
	if err := s.fs.WriteFile(input.OutputPath, data); err != nil {
		return result, fmt.Errorf("%w: write output: %w", pipeline.ErrEncodingFailed, err)
	}

	if result.Resized > 0 {
		s.logger.Debug("Resized %d frames to %s", result.Resized, geometry)
	}

	result.FrameCount = len(frames)
	result.DurationSec = pipeline.OutputDuration(len(frames), input.FPS)
	result.FileSize = int64(len(data))
	return result, nil
}

func (s *Stage) loadFrame(f pipeline.Frame) (image.Image, error) {
	data, err := s.fs.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", f.Index, err)
	}
	img, err := s.renderer.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", f.Index, err)
	}
	return img, nil
}

// abort finalizes a started encoder so its process does not linger.
func (s *Stage) abort() {
	_, _ = s.encoder.End()
}

// evenSize rounds both sides up to even numbers, as required by yuv420p.
func evenSize(d pipeline.Dimension) pipeline.Dimension {
	return pipeline.Dimension{
		Width:  (d.Width + 1) / 2 * 2,
		Height: (d.Height + 1) / 2 * 2,
	}
}
