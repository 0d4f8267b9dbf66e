// Package ffmpegencoder implements ports.VideoEncoder by piping raw RGBA
// frames into an ffmpeg process that writes an MP4 container.
package ffmpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/scribbler/pkg/adapters/ffmpegbin"
	"github.com/user/scribbler/pkg/ports"
)

// DefaultCodec is the four-character code written when EncoderOptions.Codec is empty.
const DefaultCodec = "mp4v"

// DefaultQuality is the mpeg4 quantizer used when EncoderOptions.Quality is out of range.
const DefaultQuality = 3

// codecs maps four-character codes to ffmpeg encoder arguments.
var codecs = map[string][]string{
	"mp4v": {"-c:v", "mpeg4", "-tag:v", "mp4v"},
	"avc1": {"-c:v", "libx264", "-tag:v", "avc1"},
}

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	width  int
	height int
	fps    float64
	opts   ports.EncoderOptions

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frame      *image.RGBA
	frameCount int
}

// New creates a new Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Begin starts ffmpeg for a constant-rate stream of width x height frames.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if fps <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidFrameRate, fps)
	}
	if opts.Codec == "" {
		opts.Codec = DefaultCodec
	}
	codecArgs, ok := codecs[opts.Codec]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedCodec, opts.Codec)
	}
	if opts.Quality < 1 || opts.Quality > 31 {
		opts.Quality = DefaultQuality
	}

	ffmpegPath, err := ffmpegbin.Find(ffmpegbin.FFmpeg)
	if err != nil {
		return err
	}

	e.width = width
	e.height = height
	e.fps = fps
	e.opts = opts
	e.frameCount = 0
	e.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	e.stderr.Reset()

	tmpFile, err := os.CreateTemp("", "scribbler_encode_*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	rate := strconv.FormatFloat(fps, 'f', -1, 64)
	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", rate,
		"-i", "pipe:0",
	}
	args = append(args, codecArgs...)
	if opts.Codec == "mp4v" {
		args = append(args, "-q:v", strconv.Itoa(opts.Quality))
	}
	args = append(args,
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-r", rate,
		"-movflags", "+faststart",
		e.tempPath,
	)

	e.cmd = exec.Command(ffmpegPath, args...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		e.stdin = nil
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return nil
}

// EncodeFrame writes one frame. Frames of another size are cropped or padded
// at the origin; callers resize beforehand.
func (e *Encoder) EncodeFrame(img image.Image) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}

	draw.Draw(e.frame, e.frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
	draw.Draw(e.frame, e.frame.Bounds(), img, img.Bounds().Min, draw.Src)

	if _, err := e.stdin.Write(e.frame.Pix); err != nil {
		return fmt.Errorf("failed to write frame: %w: %s", err, e.stderr.String())
	}

	e.frameCount++
	return nil
}

// End closes the stream, waits for ffmpeg and returns the MP4 bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}

	e.stdin.Close()
	e.stdin = nil
	defer func() {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}()

	waitErr := e.cmd.Wait()
	if e.frameCount == 0 {
		return nil, ErrNoFrames
	}
	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", waitErr, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	return data, nil
}

// FrameCount returns the number of frames written since Begin.
func (e *Encoder) FrameCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

// Ensure Encoder implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Encoder)(nil)
