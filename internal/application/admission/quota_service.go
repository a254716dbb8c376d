package admission

import (
	"context"
	"time"

	"github.com/billpay/backend/internal/domain/admission"
	"go.uber.org/zap"
)

// QuotaConfig describes the per-subscriber daily call quota
type QuotaConfig struct {
	Enabled    bool
	DailyLimit int64
}

// DailyQuotaService enforces the per-subscriber daily call ceiling on
// metered endpoints. The counter lives in the database so all instances
// share it; if the database cannot answer, the call is admitted and the
// failure logged.
type DailyQuotaService struct {
	usageRepo admission.DailyUsageRepository
	config    QuotaConfig
	logger    *zap.Logger
}

// NewDailyQuotaService creates a new DailyQuotaService
func NewDailyQuotaService(usageRepo admission.DailyUsageRepository, config QuotaConfig, logger *zap.Logger) *DailyQuotaService {
	return &DailyQuotaService{
		usageRepo: usageRepo,
		config:    config,
		logger:    logger,
	}
}

// Enabled reports whether the quota is enforced
func (s *DailyQuotaService) Enabled() bool {
	return s.config.Enabled
}

// Admit counts one call for the subscriber on the endpoint and decides
// whether it may proceed. The day boundary is UTC midnight.
func (s *DailyQuotaService) Admit(ctx context.Context, subscriberNo, endpoint string) admission.Decision {
	now := time.Now()
	resetAt := admission.NextUTCMidnight(now)

	if !s.config.Enabled {
		return admission.Allow(s.config.DailyLimit, s.config.DailyLimit, resetAt)
	}

	usageDate := admission.UsageDate(now)
	count, admitted, err := s.usageRepo.IncrementIfBelow(ctx, subscriberNo, endpoint, usageDate, s.config.DailyLimit)
	if err != nil {
		s.logger.Warn("Daily quota store unavailable, admitting call",
			zap.String("subscriber_no", subscriberNo),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return admission.Allow(s.config.DailyLimit, s.config.DailyLimit, resetAt)
	}

	if !admitted {
		s.logger.Warn("Call rejected by daily quota",
			zap.String("subscriber_no", subscriberNo),
			zap.String("endpoint", endpoint),
			zap.Int64("count", count),
			zap.Int64("limit", s.config.DailyLimit))
		return admission.Deny(s.config.DailyLimit, resetAt)
	}

	remaining := s.config.DailyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return admission.Allow(s.config.DailyLimit, remaining, resetAt)
}
