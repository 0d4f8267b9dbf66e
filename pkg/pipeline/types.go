package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/scribbler/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Stage names used for progress, metrics and log components.
const (
	StageExtract   = "extract"
	StageResample  = "resample"
	StageTransform = "transform"
	StageAssemble  = "assemble"
)

// Dimension represents width and height.
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Frame is one image in a frame workspace.
type Frame struct {
	Index int
	Path  string
}

// Mode selects which transformer is tried first for every frame.
type Mode string

const (
	// ModeAI sends frames to the hosted image model and doodles on failure.
	ModeAI Mode = "ai"
	// ModeExperimental draws procedural doodles only.
	ModeExperimental Mode = "experimental"
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAI:
		return ModeAI, nil
	case ModeExperimental:
		return ModeExperimental, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q (want ai or experimental)", ErrInvalidRequest, s)
}

// Strategy binds the transformers and the dispatch policy for a mode.
type Strategy struct {
	Mode        Mode
	Primary     ports.FrameTransformer
	Fallback    ports.FrameTransformer
	Concurrency int
	// Throttled makes every task wait the request delay after its primary call.
	Throttled bool
}

// =============================================================================
// Extract Stage Types
// =============================================================================

// ExtractInput contains parameters for frame extraction.
type ExtractInput struct {
	SourcePath string
	OutputDir  string
	Limit      int // Plan.FramesToExtract; NoFrameLimit extracts the whole stream
	Quality    int // JPEG quality of the written frames
}

// ExtractResult describes the extracted frame set.
type ExtractResult struct {
	FrameCount      int
	FramesToExtract int // NoFrameLimit when the stream length was unknown
	Metadata        ports.VideoMetadata
}

// =============================================================================
// Resample Stage Types
// =============================================================================

// ResampleInput contains parameters for subsampling a frame set in place.
type ResampleInput struct {
	Dir  string
	Skip int // keep every Skip-th frame; values <= 1 keep everything
}

// ResampleResult describes the retained frame set.
type ResampleResult struct {
	RetainedCount int
	Removed       int
}

// =============================================================================
// Transform Stage Types
// =============================================================================

// TransformInput contains parameters for the transform dispatcher.
type TransformInput struct {
	InputDir  string
	OutputDir string
	Strategy  Strategy
	Delay     time.Duration
	Quality   int
}

// OutcomeSource names the transformer whose image was written for a frame.
type OutcomeSource string

const (
	SourcePrimary  OutcomeSource = "primary"
	SourceFallback OutcomeSource = "fallback"
)

// FrameOutcome records how one frame was transformed.
type FrameOutcome struct {
	Index  int           `json:"index"`
	Source OutcomeSource `json:"source"`
	Cause  string        `json:"cause,omitempty"`
}

// TransformResult lists one outcome per input frame, sorted by index.
type TransformResult struct {
	Outcomes  []FrameOutcome
	Fallbacks int
}

// =============================================================================
// Assemble Stage Types
// =============================================================================

// AssembleInput contains parameters for building the output video.
type AssembleInput struct {
	FramesDir  string
	OutputPath string
	FPS        float64
	Geometry   *Dimension // nil uses the first frame's size
	Codec      string
	Quality    int
}

// AssembleResult describes the written video.
type AssembleResult struct {
	OutputPath  string
	FrameCount  int
	Geometry    Dimension
	Resized     int
	DurationSec float64
	FileSize    int64
}
