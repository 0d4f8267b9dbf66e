package mocks

import (
	"sync"

	"github.com/user/scribbler/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	MetadataJSON []byte
	PlanJSON     []byte
	OutcomesJSON []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveMetadataJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MetadataJSON = data
	return nil
}

func (m *DebugSink) SavePlanJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlanJSON = data
	return nil
}

func (m *DebugSink) SaveOutcomesJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutcomesJSON = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                      { return false }
func (m *NullSink) SaveMetadataJSON(data []byte) error { return nil }
func (m *NullSink) SavePlanJSON(data []byte) error     { return nil }
func (m *NullSink) SaveOutcomesJSON(data []byte) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
