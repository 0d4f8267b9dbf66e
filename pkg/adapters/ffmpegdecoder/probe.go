package ffmpegdecoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/user/scribbler/pkg/adapters/ffmpegbin"
	"github.com/user/scribbler/pkg/ports"
)

// probeResult matches the ffprobe JSON output structure.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NbFrames     string `json:"nb_frames"`
	Duration     string `json:"duration"`
}

// runFFprobe queries the first video stream of path.
func runFFprobe(ctx context.Context, path string) (ports.VideoMetadata, error) {
	ffprobePath, err := ffmpegbin.Find(ffmpegbin.FFprobe)
	if err != nil {
		return ports.VideoMetadata{}, err
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return ports.VideoMetadata{}, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseProbeOutput(output)
}

// parseProbeOutput converts ffprobe JSON into metadata. The frame count comes
// from nb_frames when present, otherwise from duration * fps.
func parseProbeOutput(data []byte) (ports.VideoMetadata, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return ports.VideoMetadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var stream *probeStream
	for i := range probe.Streams {
		if probe.Streams[i].CodecType == "video" {
			stream = &probe.Streams[i]
			break
		}
	}
	if stream == nil {
		return ports.VideoMetadata{}, ErrNoVideoStream
	}

	meta := ports.VideoMetadata{
		Width:  stream.Width,
		Height: stream.Height,
		Codec:  stream.CodecName,
		FPS:    parseFrameRate(stream.AvgFrameRate),
	}
	if meta.FPS <= 0 {
		meta.FPS = parseFrameRate(stream.RFrameRate)
	}

	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		meta.FrameCount = n
	} else if meta.FPS > 0 {
		dur := parseSeconds(stream.Duration)
		if dur <= 0 {
			dur = parseSeconds(probe.Format.Duration)
		}
		meta.FrameCount = int(math.Round(dur * meta.FPS))
	}

	return meta, nil
}

// parseFrameRate parses "num/den" or a plain number. Invalid input yields 0.
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
