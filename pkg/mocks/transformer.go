package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/scribbler/pkg/ports"
)

// FrameTransformer is a mock implementation of ports.FrameTransformer.
// The default returns the input unchanged.
type FrameTransformer struct {
	TransformFunc func(ctx context.Context, img image.Image) (image.Image, error)

	mu    sync.Mutex
	calls int
}

func (m *FrameTransformer) Transform(ctx context.Context, img image.Image) (image.Image, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.TransformFunc != nil {
		return m.TransformFunc(ctx, img)
	}
	return img, nil
}

// Calls returns how many times Transform was invoked.
func (m *FrameTransformer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ ports.FrameTransformer = (*FrameTransformer)(nil)
