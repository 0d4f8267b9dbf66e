// Package workspacelock guards the shared frame workspaces with an advisory
// file lock so two runs cannot interleave their frames.
package workspacelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/user/scribbler/pkg/ports"
)

// FileName is the lock file created inside the workspace root.
const FileName = ".scribbler.lock"

// Lock wraps a flock.Flock on a path.
type Lock struct {
	path string
	lock *flock.Flock
}

// New creates a lock on FileName inside dir. The file is created on TryLock.
func New(dir string) *Lock {
	path := filepath.Join(dir, FileName)
	return &Lock{path: path, lock: flock.New(path)}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// TryLock acquires the lock without blocking.
func (l *Lock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	return ok, nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *Lock) Unlock() error {
	if !l.lock.Locked() {
		return nil
	}
	return l.lock.Unlock()
}

// Ensure Lock implements ports.Locker
var _ ports.Locker = (*Lock)(nil)
