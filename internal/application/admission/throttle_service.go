package admission

import (
	"context"
	"time"

	"github.com/billpay/backend/internal/domain/admission"
	"go.uber.org/zap"
)

// ThrottleConfig describes one fixed-window throttle
type ThrottleConfig struct {
	Scope  string
	Limit  int64
	Window time.Duration
}

// ThrottleService admits or rejects requests against a fixed-window
// counter. A broken counter store never blocks traffic: store errors
// are logged and the request is admitted.
type ThrottleService struct {
	store  admission.CounterStore
	config ThrottleConfig
	logger *zap.Logger
}

// NewThrottleService creates a throttle for one scope
func NewThrottleService(store admission.CounterStore, config ThrottleConfig, logger *zap.Logger) *ThrottleService {
	return &ThrottleService{
		store:  store,
		config: config,
		logger: logger,
	}
}

// Limit returns the configured window limit
func (s *ThrottleService) Limit() int64 {
	return s.config.Limit
}

// Admit counts the request against the client's window and decides
// whether it may proceed
func (s *ThrottleService) Admit(ctx context.Context, client string) admission.Decision {
	key := admission.WindowKey(s.config.Scope, client)
	count, resetAt, err := s.store.Increment(ctx, key, s.config.Window)
	if err != nil {
		s.logger.Warn("Rate limit store unavailable, admitting request",
			zap.String("scope", s.config.Scope),
			zap.String("client", client),
			zap.Error(err))
		return admission.Allow(s.config.Limit, s.config.Limit, time.Now().Add(s.config.Window))
	}

	decision := admission.FromCount(count, s.config.Limit, resetAt)
	if !decision.Allowed {
		s.logger.Warn("Request rejected by rate limit",
			zap.String("scope", s.config.Scope),
			zap.String("client", client),
			zap.Int64("count", count),
			zap.Int64("limit", s.config.Limit))
	}
	return decision
}

// Check decides from the current counter without counting the request.
// Used by the auth throttle, which only counts failed attempts.
func (s *ThrottleService) Check(ctx context.Context, client string) admission.Decision {
	key := admission.WindowKey(s.config.Scope, client)
	count, resetAt, err := s.store.Peek(ctx, key, s.config.Window)
	if err != nil {
		s.logger.Warn("Rate limit store unavailable, admitting request",
			zap.String("scope", s.config.Scope),
			zap.String("client", client),
			zap.Error(err))
		return admission.Allow(s.config.Limit, s.config.Limit, time.Now().Add(s.config.Window))
	}

	// The stored count reflects already-recorded failures, so the
	// client is rejected once it reaches the limit.
	decision := admission.FromCount(count+1, s.config.Limit, resetAt)
	if !decision.Allowed {
		s.logger.Warn("Request rejected by rate limit",
			zap.String("scope", s.config.Scope),
			zap.String("client", client),
			zap.Int64("count", count),
			zap.Int64("limit", s.config.Limit))
	}
	return decision
}

// Record counts one event against the client's window
func (s *ThrottleService) Record(ctx context.Context, client string) {
	key := admission.WindowKey(s.config.Scope, client)
	if _, _, err := s.store.Increment(ctx, key, s.config.Window); err != nil {
		s.logger.Warn("Failed to record rate limit event",
			zap.String("scope", s.config.Scope),
			zap.String("client", client),
			zap.Error(err))
	}
}
