package ports

import (
	"context"
	"image"
)

// VideoMetadata describes the video stream of a source file.
type VideoMetadata struct {
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"` // 0 when the container does not say
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Codec      string  `json:"codec,omitempty"`
}

// Duration returns the native duration in seconds, or 0 if unknown.
func (m VideoMetadata) Duration() float64 {
	if m.FPS <= 0 || m.FrameCount <= 0 {
		return 0
	}
	return float64(m.FrameCount) / m.FPS
}

// VideoDecoder abstracts video decoding operations.
type VideoDecoder interface {
	// Probe reads stream metadata without decoding any frame.
	Probe(ctx context.Context, path string) (VideoMetadata, error)

	// Open starts a sequential decode of the source.
	Open(ctx context.Context, path string) (FrameReader, error)
}

// FrameReader yields decoded frames in presentation order.
type FrameReader interface {
	// Metadata is available before the first call to Next.
	Metadata() VideoMetadata

	// Next returns the next frame, or io.EOF at end of stream.
	Next() (image.Image, error)

	// Close releases the decoder.
	Close() error
}
