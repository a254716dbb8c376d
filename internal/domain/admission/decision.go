package admission

import "time"

// Decision is the outcome of an admission check. Limit, Remaining and
// ResetAt are always populated so callers can emit rate-limit headers
// on both allowed and denied requests.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Allow builds an allowing decision with the remaining budget
func Allow(limit, remaining int64, resetAt time.Time) Decision {
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: limit, Remaining: remaining, ResetAt: resetAt}
}

// Deny builds a denying decision; remaining is always zero
func Deny(limit int64, resetAt time.Time) Decision {
	return Decision{Allowed: false, Limit: limit, Remaining: 0, ResetAt: resetAt}
}

// FromCount derives a decision from a window counter reading. count is
// the number of requests observed in the window including the current
// one; the request is admitted while count stays at or below the limit.
func FromCount(count, limit int64, resetAt time.Time) Decision {
	if count > limit {
		return Deny(limit, resetAt)
	}
	return Allow(limit, limit-count, resetAt)
}

// RetryAfter returns the seconds a denied caller should wait before
// retrying, never less than one second.
func (d Decision) RetryAfter(now time.Time) int64 {
	secs := int64(d.ResetAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
