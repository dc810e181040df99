package integration

import (
	"context"
	"time"
)

// SyncLocker serializes syncs of the same store integration across callers.
type SyncLocker interface {
	// TryLock acquires the lock without waiting. ok is false when another sync holds it.
	// The returned release function is safe to call more than once.
	TryLock(ctx context.Context, storeIntegrationID uint64, ttl time.Duration) (release func(), ok bool, err error)
}
