package mocks

import (
	"context"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/user/scribbler/pkg/ports"
)

// VideoDecoder is a mock implementation of ports.VideoDecoder.
// By default it yields Frames solid-colour frames of Metadata geometry.
type VideoDecoder struct {
	ProbeFunc func(ctx context.Context, path string) (ports.VideoMetadata, error)
	OpenFunc  func(ctx context.Context, path string) (ports.FrameReader, error)

	Metadata ports.VideoMetadata
	Frames   int // number of frames the default reader yields

	mu         sync.Mutex
	ProbeCalls []string
	OpenCalls  []string
}

func (m *VideoDecoder) Probe(ctx context.Context, path string) (ports.VideoMetadata, error) {
	m.mu.Lock()
	m.ProbeCalls = append(m.ProbeCalls, path)
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	return m.Metadata, nil
}

func (m *VideoDecoder) Open(ctx context.Context, path string) (ports.FrameReader, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, path)
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path)
	}
	return NewFrameReader(m.Metadata, m.Frames), nil
}

var _ ports.VideoDecoder = (*VideoDecoder)(nil)

// FrameReader is a mock implementation of ports.FrameReader.
type FrameReader struct {
	meta   ports.VideoMetadata
	frames int
	pos    int

	// NextErrAt makes Next return NextErr once pos reaches it (if NextErr is set).
	NextErrAt int
	NextErr   error

	Reads  int
	Closed bool
}

// NewFrameReader creates a reader yielding n frames whose red channel encodes the index.
func NewFrameReader(meta ports.VideoMetadata, n int) *FrameReader {
	return &FrameReader{meta: meta, frames: n}
}

func (r *FrameReader) Metadata() ports.VideoMetadata {
	return r.meta
}

func (r *FrameReader) Next() (image.Image, error) {
	if r.NextErr != nil && r.pos >= r.NextErrAt {
		return nil, r.NextErr
	}
	if r.pos >= r.frames {
		return nil, io.EOF
	}
	w, h := r.meta.Width, r.meta.Height
	if w <= 0 || h <= 0 {
		w, h = 16, 16
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(r.pos), G: 0, B: 0, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	r.pos++
	r.Reads++
	return img, nil
}

func (r *FrameReader) Close() error {
	r.Closed = true
	return nil
}

var _ ports.FrameReader = (*FrameReader)(nil)
