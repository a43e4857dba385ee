// Package locker provides distributed locks so that periodic jobs run on one instance at a time.
package locker

import (
	"context"
	"time"
)

// DistributedLocker grants named locks across service instances.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	acquired, err := l.Acquire(ctx, "audit", 5*time.Minute)
//	if err != nil || !acquired {
//	    return err
//	}
//	defer l.Release(ctx, "audit")
type DistributedLocker interface {
	// Acquire tries once to take the lock. It returns false without error when
	// another holder has it. The lock expires after ttl unless released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lock held by this locker. Releasing a lock that is not
	// held is a no-op.
	Release(ctx context.Context, key string) error
}
