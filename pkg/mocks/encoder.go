package mocks

import (
	"image"
	"sync"

	"github.com/user/scribbler/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder.
type VideoEncoder struct {
	mu sync.Mutex

	BeginFunc       func(width, height int, fps float64, opts ports.EncoderOptions) error
	EncodeFrameFunc func(img image.Image) error
	EndFunc         func() ([]byte, error)

	// Recorded calls for verification
	BeginCalled      bool
	BeginArgs        BeginCall
	EncodeFrameCalls []EncodeFrameCall
	EndCalled        bool
}

// BeginCall records the arguments of Begin.
type BeginCall struct {
	Width  int
	Height int
	FPS    float64
	Opts   ports.EncoderOptions
}

// EncodeFrameCall records a call to EncodeFrame.
type EncodeFrameCall struct {
	Width  int
	Height int
	Image  image.Image
}

func (m *VideoEncoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	m.mu.Lock()
	m.BeginCalled = true
	m.BeginArgs = BeginCall{Width: width, Height: height, FPS: fps, Opts: opts}
	m.mu.Unlock()
	if m.BeginFunc != nil {
		return m.BeginFunc(width, height, fps, opts)
	}
	return nil
}

func (m *VideoEncoder) EncodeFrame(img image.Image) error {
	b := img.Bounds()
	m.mu.Lock()
	m.EncodeFrameCalls = append(m.EncodeFrameCalls, EncodeFrameCall{Width: b.Dx(), Height: b.Dy(), Image: img})
	m.mu.Unlock()
	if m.EncodeFrameFunc != nil {
		return m.EncodeFrameFunc(img)
	}
	return nil
}

func (m *VideoEncoder) End() ([]byte, error) {
	m.mu.Lock()
	m.EndCalled = true
	m.mu.Unlock()
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	// Minimal ftyp box header
	return []byte{0x00, 0x00, 0x00, 0x08, 'f', 't', 'y', 'p'}, nil
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
