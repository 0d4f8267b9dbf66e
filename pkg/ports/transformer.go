package ports

import (
	"context"
	"image"
)

// FrameTransformer produces a stylised version of one frame.
// Implementations must be safe for concurrent use.
type FrameTransformer interface {
	Transform(ctx context.Context, img image.Image) (image.Image, error)
}

// TransformerFunc is a function adapter for FrameTransformer.
type TransformerFunc func(ctx context.Context, img image.Image) (image.Image, error)

// Transform implements FrameTransformer.
func (f TransformerFunc) Transform(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}
