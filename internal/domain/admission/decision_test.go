package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromCount(t *testing.T) {
	resetAt := time.Now().Add(15 * time.Minute)

	t.Run("first request is admitted", func(t *testing.T) {
		d := FromCount(1, 100, resetAt)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(100), d.Limit)
		assert.Equal(t, int64(99), d.Remaining)
	})

	t.Run("request at limit is admitted with zero remaining", func(t *testing.T) {
		d := FromCount(100, 100, resetAt)
		assert.True(t, d.Allowed)
		assert.Equal(t, int64(0), d.Remaining)
	})

	t.Run("request past limit is denied", func(t *testing.T) {
		d := FromCount(101, 100, resetAt)
		assert.False(t, d.Allowed)
		assert.Equal(t, int64(0), d.Remaining)
		assert.Equal(t, resetAt, d.ResetAt)
	})
}

func TestRetryAfter(t *testing.T) {
	now := time.Now()

	t.Run("reports seconds until reset", func(t *testing.T) {
		d := Deny(100, now.Add(90*time.Second))
		assert.InDelta(t, 90, d.RetryAfter(now), 1)
	})

	t.Run("never below one second", func(t *testing.T) {
		d := Deny(100, now.Add(-5*time.Second))
		assert.Equal(t, int64(1), d.RetryAfter(now))
	})
}

func TestWindowKey(t *testing.T) {
	assert.Equal(t, "ratelimit:global:203.0.113.7", WindowKey("global", "203.0.113.7"))
	assert.Equal(t, "ratelimit:auth:::1", WindowKey("auth", "::1"))
}

func TestUsageDate(t *testing.T) {
	instant := time.Date(2026, 3, 14, 23, 30, 0, 0, time.FixedZone("TRT", 3*3600))
	assert.Equal(t, "2026-03-14", UsageDate(instant))

	reset := NextUTCMidnight(instant)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), reset)
}
