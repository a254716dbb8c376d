package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/billpay/backend/internal/domain/admission"
	"github.com/redis/go-redis/v9"
)

// incrScript bumps the window counter and stamps the TTL on first use.
// Running it as a script keeps increment and expiry atomic, so a
// crashed client can never leave a counter without an expiry.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisCounterStore implements admission.CounterStore on Redis.
// Suitable for distributed deployments where all instances must share
// one view of the request counters.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a counter store with an existing Redis client
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Increment bumps the counter for key and returns the new count plus
// the moment the window resets
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	result, err := incrScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if len(result) != 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected rate limit script reply: %v", result)
	}

	count, _ := result[0].(int64)
	ttlMillis, _ := result[1].(int64)
	return count, resetTime(ttlMillis, window), nil
}

// Peek returns the current counter for key without incrementing it
func (s *RedisCounterStore) Peek(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return 0, time.Time{}, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	count, err := getCmd.Int64()
	if err == redis.Nil {
		return 0, time.Now().Add(window), nil
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to parse rate limit counter: %w", err)
	}

	return count, resetTime(ttlCmd.Val().Milliseconds(), window), nil
}

// Close closes the underlying Redis client
func (s *RedisCounterStore) Close() error {
	return s.client.Close()
}

func resetTime(ttlMillis int64, window time.Duration) time.Time {
	if ttlMillis <= 0 {
		return time.Now().Add(window)
	}
	return time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)
}

// Ensure RedisCounterStore implements CounterStore
var _ admission.CounterStore = (*RedisCounterStore)(nil)
