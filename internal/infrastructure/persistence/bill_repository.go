package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/billpay/backend/internal/domain/billing"
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBillRepository implements billing.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// Create persists a new bill together with its detail lines
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.BillModel
		model.FromDomain(bill)

		if err := tx.Create(&model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return err
		}

		for i := range bill.Details {
			var detailModel models.BillDetailModel
			detailModel.FromDomain(&bill.Details[i])
			if err := tx.Create(&detailModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByPeriod loads the bill for one billing period
func (r *GormBillRepository) FindByPeriod(ctx context.Context, subscriberNo string, month, year int) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).
		Where("subscriber_no = ? AND month = ? AND year = ?", subscriberNo, month, year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnpaidBySubscriber loads all bills with an outstanding balance, newest period first
func (r *GormBillRepository) FindUnpaidBySubscriber(ctx context.Context, subscriberNo string) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := r.db.WithContext(ctx).
		Where("subscriber_no = ? AND status <> ?", subscriberNo, billing.BillStatusFullyPaid.String()).
		Order("year DESC, month DESC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}

	bills := make([]billing.Bill, len(billModels))
	for i := range billModels {
		bills[i] = *billModels[i].ToDomain()
	}
	return bills, nil
}

// FindDetails returns a page of detail lines for a bill
func (r *GormBillRepository) FindDetails(ctx context.Context, billID uuid.UUID, filter shared.Filter) (shared.Paginated[billing.BillDetail], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.BillDetailModel{}).
		Where("bill_id = ?", billID).
		Count(&total).Error; err != nil {
		return shared.Paginated[billing.BillDetail]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, BillDetailSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var detailModels []models.BillDetailModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&detailModels).Error; err != nil {
		return shared.Paginated[billing.BillDetail]{}, err
	}

	details := make([]billing.BillDetail, len(detailModels))
	for i := range detailModels {
		details[i] = *detailModels[i].ToDomain()
	}
	return shared.NewPaginated(details, total, page, pageSize), nil
}

// AppendDetail loads the bill for the period, runs apply and inserts
// the returned detail line
func (r *GormBillRepository) AppendDetail(ctx context.Context, subscriberNo string, month, year int, apply func(*billing.Bill) (*billing.BillDetail, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.BillModel
		if err := tx.
			Where("subscriber_no = ? AND month = ? AND year = ?", subscriberNo, month, year).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		detail, err := apply(model.ToDomain())
		if err != nil {
			return err
		}

		var detailModel models.BillDetailModel
		detailModel.FromDomain(detail)
		return tx.Create(&detailModel).Error
	})
}

// Pay runs apply against the bill row for the period under a FOR UPDATE
// lock and persists the mutated bill plus the returned payment
// transaction atomically. Lock timeouts, deadlocks and serialization
// aborts surface as shared.ErrConcurrencyConflict so callers can retry.
func (r *GormBillRepository) Pay(ctx context.Context, subscriberNo string, month, year int, apply func(*billing.Bill) (*billing.PaymentTransaction, error)) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.BillModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("subscriber_no = ? AND month = ? AND year = ?", subscriberNo, month, year).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		bill := model.ToDomain()
		paymentTx, err := apply(bill)
		if err != nil {
			return err
		}

		var updated models.BillModel
		updated.FromDomain(bill)
		if err := tx.Model(&models.BillModel{}).
			Where("id = ?", updated.ID).
			Updates(map[string]any{
				"paid_amount": updated.PaidAmount,
				"status":      updated.Status,
				"version":     updated.Version,
				"updated_at":  updated.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		var txModel models.PaymentTransactionModel
		txModel.FromDomain(paymentTx)
		return tx.Create(&txModel).Error
	})

	if err != nil && isConcurrencyConflict(err) {
		return shared.ErrConcurrencyConflict
	}
	return err
}

// FindTransactionsByBill returns the payment log for a bill, oldest first
func (r *GormBillRepository) FindTransactionsByBill(ctx context.Context, billID uuid.UUID) ([]billing.PaymentTransaction, error) {
	var txModels []models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]billing.PaymentTransaction, len(txModels))
	for i := range txModels {
		transactions[i] = *txModels[i].ToDomain()
	}
	return transactions, nil
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) reports constraint failures as plain errors
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isConcurrencyConflict reports whether err is a lock timeout, deadlock
// or serialization failure
func isConcurrencyConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
