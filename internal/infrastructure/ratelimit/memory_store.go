package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/billpay/backend/internal/domain/admission"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryCounterStore implements admission.CounterStore in process
// memory. It is the fallback for single-instance deployments that run
// without Redis; counters are lost on restart.
type MemoryCounterStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryCounterStore creates an in-memory counter store
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		windows: make(map[string]*window),
	}
}

// Increment bumps the counter for key, starting a fresh window when the
// previous one has expired
func (s *MemoryCounterStore) Increment(ctx context.Context, key string, windowSize time.Duration) (int64, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.pruneExpiredLocked(now)
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Peek returns the current counter for key without incrementing it
func (s *MemoryCounterStore) Peek(ctx context.Context, key string, windowSize time.Duration) (int64, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		return 0, now.Add(windowSize), nil
	}
	return w.count, w.resetAt, nil
}

// pruneExpiredLocked drops windows that are past their reset time.
// Called with the mutex held whenever a window rolls over, which keeps
// the map from accumulating dead client entries.
func (s *MemoryCounterStore) pruneExpiredLocked(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// Ensure MemoryCounterStore implements CounterStore
var _ admission.CounterStore = (*MemoryCounterStore)(nil)
