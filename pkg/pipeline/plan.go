package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/user/scribbler/pkg/ports"
)

// NoFrameLimit means extraction runs until end of stream.
const NoFrameLimit = -1

// MinOptionFPS is the lowest rate offered by FPSOptions besides the native one.
const MinOptionFPS = 10

// fpsTolerance absorbs float noise when comparing rates and durations.
const fpsTolerance = 1e-6

// Plan holds the frame-rate arithmetic for one run. It is computed once from
// the probed metadata and passed unchanged to every stage.
type Plan struct {
	NativeFPS       float64   `json:"native_fps"`
	NativeFrames    int       `json:"native_frames"`
	Geometry        Dimension `json:"geometry"`
	DurationCutoff  *float64  `json:"duration_cutoff,omitempty"`
	FramesToExtract int       `json:"frames_to_extract"`
	FrameSkip       int       `json:"frame_skip"`
	RetainedCount   int       `json:"retained_count"`
	TargetFPS       float64   `json:"target_fps"`
	OutputDuration  float64   `json:"output_duration"`
	SpeedFactor     float64   `json:"speed_factor"`
}

// NewPlan validates the requested rate and cutoff against the source and
// derives the extraction, skip and output figures.
// A targetFPS of 0 keeps the native rate.
func NewPlan(meta ports.VideoMetadata, cutoff *float64, targetFPS float64) (Plan, error) {
	if meta.FPS <= 0 || math.IsNaN(meta.FPS) || math.IsInf(meta.FPS, 0) {
		return Plan{}, fmt.Errorf("%w: frame rate %v", ErrSourceUnreadable, meta.FPS)
	}
	if cutoff != nil {
		if *cutoff <= 0 {
			return Plan{}, fmt.Errorf("%w: duration cutoff must be positive, got %v", ErrInvalidRequest, *cutoff)
		}
		if d := meta.Duration(); d > 0 && *cutoff > d+fpsTolerance {
			return Plan{}, fmt.Errorf("%w: duration cutoff %.2fs exceeds source duration %.2fs", ErrInvalidRequest, *cutoff, d)
		}
	}
	if targetFPS < 0 {
		return Plan{}, fmt.Errorf("%w: target fps must not be negative, got %v", ErrInvalidRequest, targetFPS)
	}
	if targetFPS == 0 {
		targetFPS = meta.FPS
	}
	if targetFPS > meta.FPS+fpsTolerance {
		return Plan{}, fmt.Errorf("%w: target fps %.2f exceeds source fps %.2f", ErrInvalidRequest, targetFPS, meta.FPS)
	}

	p := Plan{
		NativeFPS:       meta.FPS,
		NativeFrames:    meta.FrameCount,
		Geometry:        Dimension{Width: meta.Width, Height: meta.Height},
		DurationCutoff:  cutoff,
		FramesToExtract: FramesToExtract(meta, cutoff),
		FrameSkip:       FrameSkip(meta.FPS, targetFPS),
		TargetFPS:       targetFPS,
	}
	p.RetainedCount = RetainedCount(p.FramesToExtract, p.FrameSkip)
	p.OutputDuration = OutputDuration(p.RetainedCount, targetFPS)
	if p.OutputDuration > 0 {
		p.SpeedFactor = (float64(p.FramesToExtract) / meta.FPS) / p.OutputDuration
	}
	return p, nil
}

// FramesToExtract returns min(native frame count, floor(cutoff*fps)).
// An unknown frame count without a cutoff yields NoFrameLimit.
func FramesToExtract(meta ports.VideoMetadata, cutoff *float64) int {
	limit := NoFrameLimit
	if meta.FrameCount > 0 {
		limit = meta.FrameCount
	}
	if cutoff != nil && meta.FPS > 0 {
		byCutoff := int(math.Floor(*cutoff * meta.FPS))
		if byCutoff < 0 {
			byCutoff = 0
		}
		if limit == NoFrameLimit || byCutoff < limit {
			limit = byCutoff
		}
	}
	return limit
}

// FrameSkip returns floor(native/target), at least 1.
// A target at or above the native rate keeps every frame.
func FrameSkip(nativeFPS, targetFPS float64) int {
	if targetFPS <= 0 || targetFPS >= nativeFPS {
		return 1
	}
	skip := int(math.Floor(nativeFPS/targetFPS + fpsTolerance))
	if skip < 1 {
		return 1
	}
	return skip
}

// RetainedCount returns how many of n frames survive keeping every skip-th one.
func RetainedCount(n, skip int) int {
	if n <= 0 {
		return 0
	}
	if skip <= 1 {
		return n
	}
	return (n + skip - 1) / skip
}

// OutputDuration returns the playback length in seconds of frames at fps.
func OutputDuration(frames int, fps float64) float64 {
	if frames <= 0 || fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}

// FPSOptions lists suggested output rates for a source: the native rate
// (truncated) plus native/d for d in 2..6 while at least MinOptionFPS,
// deduplicated and sorted descending.
func FPSOptions(nativeFPS float64) []int {
	base := int(nativeFPS)
	if base < 1 {
		base = 1
	}
	seen := map[int]bool{base: true}
	options := []int{base}
	for d := 2; d <= 6; d++ {
		v := int(nativeFPS / float64(d))
		if v >= MinOptionFPS && !seen[v] {
			seen[v] = true
			options = append(options, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(options)))
	return options
}
