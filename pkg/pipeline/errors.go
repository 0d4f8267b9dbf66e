package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable indicates the source video cannot be opened or has no usable frame rate.
	ErrSourceUnreadable = errors.New("source video unreadable")

	// ErrEmptyFrameSet indicates a stage received no frames to work on.
	ErrEmptyFrameSet = errors.New("empty frame set")

	// ErrEncodingFailed indicates the output video could not be created or written.
	ErrEncodingFailed = errors.New("video encoding failed")

	// ErrConfiguration indicates a required credential or setting is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidRequest indicates a processing request that violates its bounds.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrWorkspaceBusy indicates another run holds the workspace lock.
	ErrWorkspaceBusy = errors.New("workspace is in use by another run")
)

// TransformError records a primary transformer failure for one frame.
// The dispatcher recovers from it with the fallback transformer.
type TransformError struct {
	Index int
	Err   error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform frame %d: %v", e.Index, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}
