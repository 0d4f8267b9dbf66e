// Package ffmpegdecoder implements ports.VideoDecoder by streaming raw RGBA
// frames out of an ffmpeg process.
package ffmpegdecoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/scribbler/pkg/adapters/ffmpegbin"
	"github.com/user/scribbler/pkg/adapters/mp4probe"
	"github.com/user/scribbler/pkg/ports"
)

// Decoder implements ports.VideoDecoder.
type Decoder struct {
	logger ports.Logger
}

// New creates a new Decoder.
func New(logger ports.Logger) *Decoder {
	return &Decoder{logger: logger.WithComponent("decoder")}
}

// Probe reads stream metadata. ISO-BMFF containers are read directly;
// anything else, or a container the box reader rejects, goes through ffprobe.
func (d *Decoder) Probe(ctx context.Context, path string) (ports.VideoMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return ports.VideoMetadata{}, err
	}

	if mp4probe.Supported(path) {
		meta, err := mp4probe.ProbeFile(path)
		if err == nil && meta.Width > 0 && meta.Height > 0 {
			d.logger.Debug("Probed %s from container boxes: %.3f fps, %d frames, %dx%d", path, meta.FPS, meta.FrameCount, meta.Width, meta.Height)
			return meta, nil
		}
		d.logger.Debug("Container probe unavailable for %s, using ffprobe: %v", path, err)
	}

	meta, err := runFFprobe(ctx, path)
	if err != nil {
		return ports.VideoMetadata{}, err
	}
	d.logger.Debug("Probed %s with ffprobe: %.3f fps, %d frames, %dx%d", path, meta.FPS, meta.FrameCount, meta.Width, meta.Height)
	return meta, nil
}

// Open starts ffmpeg and returns a reader over its raw frame output.
func (d *Decoder) Open(ctx context.Context, path string) (ports.FrameReader, error) {
	meta, err := d.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, meta.Width, meta.Height)
	}

	ffmpegPath, err := ffmpegbin.Find(ffmpegbin.FFmpeg)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-v", "error",
		"-nostdin",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}

	r := &frameReader{
		meta:      meta,
		frameSize: meta.Width * meta.Height * 4,
	}
	r.cmd = exec.CommandContext(ctx, ffmpegPath, args...)
	r.cmd.Stderr = &r.stderr

	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := r.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	r.stdout = bufio.NewReaderSize(stdout, r.frameSize)

	d.logger.Debug("Decoding %s at %dx%d", path, meta.Width, meta.Height)
	return r, nil
}

// Ensure Decoder implements ports.VideoDecoder
var _ ports.VideoDecoder = (*Decoder)(nil)

// frameReader reads fixed-size RGBA frames from ffmpeg stdout.
type frameReader struct {
	meta      ports.VideoMetadata
	frameSize int

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  *bufio.Reader
	stderr  bytes.Buffer
	frames  int
	done    bool
	waitErr error
}

func (r *frameReader) Metadata() ports.VideoMetadata {
	return r.meta
}

func (r *frameReader) Next() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return nil, io.EOF
	}

	buf := make([]byte, r.frameSize)
	_, err := io.ReadFull(r.stdout, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		r.finish()
		// A process that fails before producing anything could not read the source.
		if r.waitErr != nil && r.frames == 0 {
			return nil, fmt.Errorf("ffmpeg decoding failed: %w: %s", r.waitErr, strings.TrimSpace(r.stderr.String()))
		}
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	r.frames++
	return &image.RGBA{
		Pix:    buf,
		Stride: r.meta.Width * 4,
		Rect:   image.Rect(0, 0, r.meta.Width, r.meta.Height),
	}, nil
}

func (r *frameReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.done && r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.finish()
	return nil
}

func (r *frameReader) finish() {
	if r.done {
		return
	}
	r.done = true
	r.waitErr = r.cmd.Wait()
}
