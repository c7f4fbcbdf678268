package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock guards against two processes draining the same queue database
// concurrently. SQLite would serialize the writes, but two runs would race
// on item claims and both load ASR models.
type RunLock struct {
	lock *flock.Flock
}

// AcquireRunLock takes the run lock under dir without blocking. A held lock
// is an error, not a wait.
func AcquireRunLock(dir string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, "epimatch-run.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run holds %s", lock.Path())
	}
	return &RunLock{lock: lock}, nil
}

// Release drops the lock. Safe to call on a nil receiver.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
