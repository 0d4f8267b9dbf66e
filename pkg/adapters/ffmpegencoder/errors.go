package ffmpegencoder

import "errors"

var (
	// ErrNotInitialized is returned when EncodeFrame or End is called before Begin.
	ErrNotInitialized = errors.New("ffmpegencoder: encoder not initialized")

	// ErrInvalidDimensions is returned when Begin receives a non-positive size.
	ErrInvalidDimensions = errors.New("ffmpegencoder: invalid dimensions")

	// ErrInvalidFrameRate is returned when Begin receives a non-positive frame rate.
	ErrInvalidFrameRate = errors.New("ffmpegencoder: invalid frame rate")

	// ErrUnsupportedCodec is returned for a four-character code this encoder does not map.
	ErrUnsupportedCodec = errors.New("ffmpegencoder: unsupported codec")

	// ErrNoFrames is returned when End is called without any encoded frame.
	ErrNoFrames = errors.New("ffmpegencoder: no frames to encode")
)
