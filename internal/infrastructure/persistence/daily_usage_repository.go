package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/billpay/backend/internal/domain/admission"
	"github.com/billpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDailyUsageRepository implements admission.DailyUsageRepository
// with a conditional upsert so concurrent callers never overshoot the
// ceiling.
type GormDailyUsageRepository struct {
	db *gorm.DB
}

// NewGormDailyUsageRepository creates a new GormDailyUsageRepository
func NewGormDailyUsageRepository(db *gorm.DB) *GormDailyUsageRepository {
	return &GormDailyUsageRepository{db: db}
}

// IncrementIfBelow bumps the call counter for (subscriberNo, endpoint,
// usageDate) only while the stored count is below ceiling. The check
// and the increment happen in a single statement, so two concurrent
// requests can never both take the last slot. It returns the counter
// value after the attempt and whether the call was admitted.
func (r *GormDailyUsageRepository) IncrementIfBelow(ctx context.Context, subscriberNo, endpoint, usageDate string, ceiling int64) (int64, bool, error) {
	if ceiling <= 0 {
		count, err := r.Count(ctx, subscriberNo, endpoint, usageDate)
		return count, false, err
	}

	now := time.Now().UTC()
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO daily_usage (id, subscriber_no, endpoint, usage_date, call_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (subscriber_no, endpoint, usage_date)
		DO UPDATE SET call_count = daily_usage.call_count + 1, updated_at = ?
		WHERE daily_usage.call_count < ?
		RETURNING call_count`,
		uuid.New(), subscriberNo, endpoint, usageDate, now, now, now, ceiling,
	).Scan(&count).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.deniedCount(ctx, subscriberNo, endpoint, usageDate)
		}
		return 0, false, err
	}

	// No RETURNING row means the conditional update did not fire: the
	// counter is already at the ceiling. gorm's Raw().Scan reports
	// zero rows through RowsAffected rather than an error.
	if count == 0 {
		return r.deniedCount(ctx, subscriberNo, endpoint, usageDate)
	}
	return count, true, nil
}

func (r *GormDailyUsageRepository) deniedCount(ctx context.Context, subscriberNo, endpoint, usageDate string) (int64, bool, error) {
	count, err := r.Count(ctx, subscriberNo, endpoint, usageDate)
	if err != nil {
		return 0, false, err
	}
	return count, false, nil
}

// Count returns the current call counter for the key, zero when no row exists
func (r *GormDailyUsageRepository) Count(ctx context.Context, subscriberNo, endpoint, usageDate string) (int64, error) {
	var model models.DailyUsageModel
	err := r.db.WithContext(ctx).
		Where("subscriber_no = ? AND endpoint = ? AND usage_date = ?", subscriberNo, endpoint, usageDate).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return model.CallCount, nil
}

// Ensure GormDailyUsageRepository implements DailyUsageRepository
var _ admission.DailyUsageRepository = (*GormDailyUsageRepository)(nil)
