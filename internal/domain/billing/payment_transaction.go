package billing

import (
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionStatus represents the outcome of a payment transaction
type TransactionStatus string

const (
	// TransactionStatusCompleted indicates the payment was committed
	TransactionStatusCompleted TransactionStatus = "completed"
)

// PaymentTransaction is an immutable record of one payment attempt that
// committed. Amount is the amount the payer requested; when a payment
// overshoots the bill total the bill caps what it absorbs, but the
// record keeps the requested figure.
type PaymentTransaction struct {
	shared.BaseEntity
	BillID       uuid.UUID
	SubscriberNo string
	Amount       valueobject.Money
	Status       TransactionStatus
}

// NewPaymentTransaction creates a completed payment record
func NewPaymentTransaction(billID uuid.UUID, subscriberNo string, amount valueobject.Money) (*PaymentTransaction, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	return &PaymentTransaction{
		BaseEntity:   shared.NewBaseEntity(),
		BillID:       billID,
		SubscriberNo: subscriberNo,
		Amount:       amount,
		Status:       TransactionStatusCompleted,
	}, nil
}
