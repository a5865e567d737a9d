// Package cooldown throttles repeatable actions, such as OTP resends,
// behind a keyed expiring reservation. The in-memory store suits a
// single process; the redis store shares the state across instances.
package cooldown

import (
	"context"
	"time"
)

// Store reserves a key for a period of time.
type Store interface {
	// Acquire reserves key for ttl. It returns zero when the
	// reservation was taken, or the remaining wait when the key is
	// still cooling down.
	Acquire(ctx context.Context, key string, ttl time.Duration) (time.Duration, error)

	// Release drops the reservation early, for example when the
	// action the reservation guarded has failed.
	Release(ctx context.Context, key string) error
}
