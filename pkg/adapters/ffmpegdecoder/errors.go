package ffmpegdecoder

import "errors"

var (
	// ErrNoVideoStream is returned when ffprobe reports no video stream.
	ErrNoVideoStream = errors.New("ffmpegdecoder: no video stream")

	// ErrInvalidGeometry is returned when the stream has no usable frame size.
	ErrInvalidGeometry = errors.New("ffmpegdecoder: invalid frame geometry")
)
