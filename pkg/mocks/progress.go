package mocks

import (
	"sync"
	"time"

	"github.com/user/scribbler/pkg/ports"
)

// Progress is a mock implementation of ports.Progress.
type Progress struct {
	mu      sync.Mutex
	Reports []ProgressReport
}

// ProgressReport records one Report call.
type ProgressReport struct {
	Stage string
	Done  int
	Total int
}

func (m *Progress) Report(stage string, done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, ProgressReport{Stage: stage, Done: done, Total: total})
}

// ForStage returns the reports recorded for one stage.
func (m *Progress) ForStage(stage string) []ProgressReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ProgressReport
	for _, r := range m.Reports {
		if r.Stage == stage {
			out = append(out, r)
		}
	}
	return out
}

var _ ports.Progress = (*Progress)(nil)

// Metrics is a mock implementation of ports.Metrics.
type Metrics struct {
	mu     sync.Mutex
	Stages map[string]time.Duration
	Frames map[string]int
	Runs   map[string]int
}

// NewMetrics creates a new mock Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Stages: make(map[string]time.Duration),
		Frames: make(map[string]int),
		Runs:   make(map[string]int),
	}
}

func (m *Metrics) StageDuration(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stages[stage] += d
}

func (m *Metrics) FrameTransformed(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[source]++
}

func (m *Metrics) RunFinished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs[status]++
}

var _ ports.Metrics = (*Metrics)(nil)

// Locker is a mock implementation of ports.Locker.
type Locker struct {
	TryLockFunc func() (bool, error)

	Locked   bool
	Unlocked bool
}

func (m *Locker) TryLock() (bool, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc()
	}
	m.Locked = true
	return true, nil
}

func (m *Locker) Unlock() error {
	m.Unlocked = true
	m.Locked = false
	return nil
}

var _ ports.Locker = (*Locker)(nil)
