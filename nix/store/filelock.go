package store

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock is a cross-process advisory lock guarding one container file
type FileLock interface {
	// TryLockContext retries to take the lock every retryInterval until ctx is done
	TryLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	// TryRLockContext is TryLockContext for a shared lock
	TryRLockContext(ctx context.Context, retryInterval time.Duration) (bool, error)

	Unlock() error
}

// FileLockFactory creates FileLock instances
type FileLockFactory interface {
	New(path string) FileLock
}

// flockFactory creates locks backed by github.com/gofrs/flock. *flock.Flock
// already satisfies FileLock.
type flockFactory struct{}

// New implements FileLockFactory.New
func (flockFactory) New(path string) FileLock {
	return flock.New(path)
}
