package ports

import "time"

// Progress receives (completed, total) updates from long-running stages.
// A total of 0 means the stage does not know its size in advance.
type Progress interface {
	Report(stage string, done, total int)
}

// Metrics records pipeline counters.
type Metrics interface {
	// StageDuration records how long a stage took.
	StageDuration(stage string, d time.Duration)

	// FrameTransformed counts one written frame by the transformer that produced it.
	FrameTransformed(source string)

	// RunFinished counts a completed run by status ("done" or "failed").
	RunFinished(status string)
}

// Locker guards the shared frame workspaces against concurrent runs.
type Locker interface {
	// TryLock acquires the lock without blocking and reports whether it did.
	TryLock() (bool, error)

	// Unlock releases the lock.
	Unlock() error
}
