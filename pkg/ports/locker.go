package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It allows the session manager to keep a single live process per invitation
// across multiple instances (replicas).
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key (e.g., invitation ID).
	// It blocks until the lock is acquired or the context is canceled.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// LockRefresher is implemented by lockers whose locks can be extended while held.
// The session manager renews the lock of every live process through it, so a
// process may outlive the lock TTL. Refresh returns domain.ErrLockLost when the
// caller no longer owns the lock.
type LockRefresher interface {
	Refresh(ctx context.Context, key string, ttl time.Duration) error
}
