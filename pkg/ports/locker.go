package ports

import (
	"context"
	"time"
)

// DefaultLockTTL bounds how long a replica may hold a session lock when the
// session manager is not configured otherwise.
const DefaultLockTTL = 30 * time.Second

// UnlockFunc releases a session lock. Releasing an expired lock is not an
// error the caller can act on; implementations report it and move on.
type UnlockFunc func(ctx context.Context) error

// SessionLocker serializes snapshot writes for one session across processes
// sharing a StateStore. Within a process the session manager already holds
// a per-session mutex; the locker only has to exclude other replicas.
type SessionLocker interface {
	// Lock blocks until the lock on sessionID is held or ctx is done.
	// The lock expires on its own after ttl.
	Lock(ctx context.Context, sessionID string, ttl time.Duration) (UnlockFunc, error)
}
