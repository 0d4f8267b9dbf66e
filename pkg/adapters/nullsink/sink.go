// Package nullsink provides a no-op debug sink implementation.
package nullsink

import "github.com/user/scribbler/pkg/ports"

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveMetadataJSON does nothing.
func (s *Sink) SaveMetadataJSON(data []byte) error {
	return nil
}

// SavePlanJSON does nothing.
func (s *Sink) SavePlanJSON(data []byte) error {
	return nil
}

// SaveOutcomesJSON does nothing.
func (s *Sink) SaveOutcomesJSON(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
