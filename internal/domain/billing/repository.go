package billing

import (
	"context"

	"github.com/billpay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillRepository provides access to bills, their detail lines and the
// payment transaction log.
type BillRepository interface {
	// Create persists a new bill together with its detail lines.
	// Returns shared.ErrAlreadyExists when a bill for the same
	// (subscriber, month, year) period already exists.
	Create(ctx context.Context, bill *Bill) error

	// FindByPeriod loads the bill for one billing period.
	// Returns shared.ErrNotFound when absent.
	FindByPeriod(ctx context.Context, subscriberNo string, month, year int) (*Bill, error)

	// FindUnpaidBySubscriber loads all bills with an outstanding balance,
	// newest period first.
	FindUnpaidBySubscriber(ctx context.Context, subscriberNo string) ([]Bill, error)

	// FindDetails returns a page of detail lines for a bill.
	FindDetails(ctx context.Context, billID uuid.UUID, filter shared.Filter) (shared.Paginated[BillDetail], error)

	// AppendDetail runs apply against the bill for the period and persists
	// the detail line apply returns. Returns shared.ErrNotFound when the
	// bill is absent.
	AppendDetail(ctx context.Context, subscriberNo string, month, year int, apply func(*Bill) (*BillDetail, error)) error

	// Pay executes apply against the bill row for the period under an
	// exclusive row lock, then persists the mutated bill and the returned
	// payment transaction in the same database transaction. Any error from
	// apply rolls everything back. Returns shared.ErrNotFound when the
	// bill is absent and shared.ErrConcurrencyConflict when the row lock
	// or transaction isolation fails.
	Pay(ctx context.Context, subscriberNo string, month, year int, apply func(*Bill) (*PaymentTransaction, error)) error

	// FindTransactionsByBill returns the payment log for a bill, oldest first.
	FindTransactionsByBill(ctx context.Context, billID uuid.UUID) ([]PaymentTransaction, error)
}
