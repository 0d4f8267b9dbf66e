package ports

import (
	"image"
)

// VideoEncoder abstracts video encoding operations.
type VideoEncoder interface {
	// Begin initializes the encoder with the specified dimensions and a constant frame rate.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame appends one frame. The frame must already match the Begin geometry.
	EncodeFrame(img image.Image) error

	// End finalizes encoding and returns the container bytes.
	End() ([]byte, error)
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Codec   string // four-character code, e.g. "mp4v"
	Quality int    // codec quantizer: 1-31 (lower is higher quality)
}
