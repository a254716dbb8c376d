package admission

import (
	"context"
	"time"
)

// UsageDateLayout is the canonical day key for daily quotas (UTC)
const UsageDateLayout = "2006-01-02"

// UsageDate returns the quota day key for the given instant
func UsageDate(t time.Time) string {
	return t.UTC().Format(UsageDateLayout)
}

// NextUTCMidnight returns the instant the daily quota resets
func NextUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

// DailyUsageRepository tracks per-subscriber call counts, keyed by
// (subscriber, endpoint, day). The increment is conditional and atomic:
// a call at the ceiling is not counted and not admitted.
type DailyUsageRepository interface {
	// IncrementIfBelow bumps the counter for today when it is still below
	// ceiling. Returns the counter value after the call and whether the
	// call was admitted.
	IncrementIfBelow(ctx context.Context, subscriberNo, endpoint, usageDate string, ceiling int64) (count int64, admitted bool, err error)

	// Count reports the counter value for a day without modifying it
	Count(ctx context.Context, subscriberNo, endpoint, usageDate string) (int64, error)
}
