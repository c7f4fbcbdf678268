package batch

import "testing"

func TestRunLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireRunLock(dir)
	if err != nil {
		t.Fatalf("AcquireRunLock: %v", err)
	}
	if _, err := AcquireRunLock(dir); err == nil {
		t.Error("second acquisition should fail while held")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := AcquireRunLock(dir)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	_ = again.Release()
}

func TestRunLockNilRelease(t *testing.T) {
	var lock *RunLock
	if err := lock.Release(); err != nil {
		t.Errorf("nil release: %v", err)
	}
}
