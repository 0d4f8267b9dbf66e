// Package mp4probe reads video stream metadata from MP4/MOV containers
// without decoding any sample.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/scribbler/pkg/ports"
)

var (
	// ErrNoVideoTrack is returned when the container has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")

	// ErrNoTiming is returned when the video track has no usable sample timing.
	ErrNoTiming = errors.New("mp4probe: video track has no sample timing")
)

// Supported reports whether path has an ISO-BMFF extension this package can read.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".m4v":
		return true
	}
	return false
}

// ProbeFile reads metadata from the file at path.
func ProbeFile(path string) (ports.VideoMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.VideoMetadata{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeReader reads metadata from an MP4 stream.
func ProbeReader(reader io.ReadSeeker) (ports.VideoMetadata, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return ports.VideoMetadata{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		return probeFragmented(mp4File)
	}
	if mp4File.Moov != nil {
		return probeProgressive(mp4File.Moov)
	}
	return ports.VideoMetadata{}, ErrNoVideoTrack
}

// trackTiming accumulates sample count and total duration in timescale units.
type trackTiming struct {
	timescale uint32
	samples   int
	duration  uint64
}

func (t trackTiming) metadata(trak *mp4.TrakBox) (ports.VideoMetadata, error) {
	if t.timescale == 0 || t.samples == 0 || t.duration == 0 {
		return ports.VideoMetadata{}, ErrNoTiming
	}
	meta := ports.VideoMetadata{
		FPS:        float64(t.samples) * float64(t.timescale) / float64(t.duration),
		FrameCount: t.samples,
	}
	meta.Width, meta.Height, meta.Codec = trackGeometry(trak)
	return meta, nil
}

func probeProgressive(moov *mp4.MoovBox) (ports.VideoMetadata, error) {
	trak := findVideoTrack(moov.Traks)
	if trak == nil {
		return ports.VideoMetadata{}, ErrNoVideoTrack
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
		return ports.VideoMetadata{}, ErrNoTiming
	}
	stbl := trak.Mdia.Minf.Stbl

	timing := trackTiming{}
	if trak.Mdia.Mdhd != nil {
		timing.timescale = trak.Mdia.Mdhd.Timescale
	}
	if stbl.Stsz != nil {
		timing.samples = int(stbl.Stsz.SampleNumber)
	}
	if stbl.Stts != nil {
		for i, count := range stbl.Stts.SampleCount {
			timing.duration += uint64(count) * uint64(stbl.Stts.SampleTimeDelta[i])
		}
	}
	return timing.metadata(trak)
}

func probeFragmented(mp4File *mp4.File) (ports.VideoMetadata, error) {
	moov := mp4File.Init.Moov
	trak := findVideoTrack(moov.Traks)
	if trak == nil {
		return ports.VideoMetadata{}, ErrNoVideoTrack
	}
	trackID := trak.Tkhd.TrackID

	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}
	if trex == nil {
		trex = &mp4.TrexBox{TrackID: trackID}
	}

	timing := trackTiming{}
	if trak.Mdia.Mdhd != nil {
		timing.timescale = trak.Mdia.Mdhd.Timescale
	}

	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil || !hasTrack(frag.Moof, trackID) {
				continue
			}
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return ports.VideoMetadata{}, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				timing.samples++
				timing.duration += uint64(s.Dur)
			}
		}
	}
	return timing.metadata(trak)
}

func findVideoTrack(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			return trak
		}
	}
	return nil
}

func hasTrack(moof *mp4.MoofBox, trackID uint32) bool {
	for _, traf := range moof.Trafs {
		if traf.Tfhd != nil && traf.Tfhd.TrackID == trackID {
			return true
		}
	}
	return false
}

// trackGeometry prefers the sample entry size and falls back to the track header.
func trackGeometry(trak *mp4.TrakBox) (width, height int, codec string) {
	if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			codec = codecName(child.Type())
			if entry, ok := child.(*mp4.VisualSampleEntryBox); ok && entry.Width > 0 && entry.Height > 0 {
				return int(entry.Width), int(entry.Height), codec
			}
		}
	}
	if trak.Tkhd != nil {
		width = int(trak.Tkhd.Width >> 16)
		height = int(trak.Tkhd.Height >> 16)
	}
	return width, height, codec
}

func codecName(boxType string) string {
	switch boxType {
	case "avc1", "avc3":
		return "h264"
	case "hvc1", "hev1":
		return "hevc"
	case "av01":
		return "av1"
	case "mp4v":
		return "mpeg4"
	case "vp09":
		return "vp9"
	}
	return boxType
}
