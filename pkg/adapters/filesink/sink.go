// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"path/filepath"

	"github.com/user/scribbler/pkg/ports"
)

// Sink saves debug output to files under a base directory.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveMetadataJSON saves the probed source metadata as metadata.json.
func (s *Sink) SaveMetadataJSON(data []byte) error {
	return s.save("metadata.json", data)
}

// SavePlanJSON saves the run plan as plan.json.
func (s *Sink) SavePlanJSON(data []byte) error {
	return s.save("plan.json", data)
}

// SaveOutcomesJSON saves the per-frame outcomes as outcomes.json.
func (s *Sink) SaveOutcomesJSON(data []byte) error {
	return s.save("outcomes.json", data)
}

func (s *Sink) save(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
