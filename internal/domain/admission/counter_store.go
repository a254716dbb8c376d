package admission

import (
	"context"
	"fmt"
	"time"
)

// CounterStore is a fixed-window request counter. The window is anchored
// at the first increment for a key and expires window later; a fresh
// window starts on the next increment after expiry.
type CounterStore interface {
	// Increment adds one to the counter for key, starting a new window
	// when none is active. Returns the count after the increment and the
	// moment the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)

	// Peek returns the current count without incrementing. A key with no
	// active window reports zero with resetAt = now + window.
	Peek(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// WindowKey builds the counter key for a throttle scope and client
// identity, e.g. "ratelimit:global:203.0.113.7".
func WindowKey(scope, client string) string {
	return fmt.Sprintf("ratelimit:%s:%s", scope, client)
}
