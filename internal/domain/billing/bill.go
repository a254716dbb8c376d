package billing

import (
	"time"

	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
)

// BillStatus represents the payment state of a bill
type BillStatus string

const (
	// BillStatusUnpaid indicates no payment has been recorded yet
	BillStatusUnpaid BillStatus = "unpaid"

	// BillStatusPartiallyPaid indicates payments cover part of the total
	BillStatusPartiallyPaid BillStatus = "partially_paid"

	// BillStatusFullyPaid indicates payments cover the full total
	BillStatusFullyPaid BillStatus = "fully_paid"
)

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusUnpaid, BillStatusPartiallyPaid, BillStatusFullyPaid:
		return true
	}
	return false
}

// Bill is the monthly bill aggregate for a subscriber.
// A bill is unique per (subscriber, month, year). Paid amount never
// exceeds the total and never goes negative; status is always derived
// from the paid/total relation.
type Bill struct {
	shared.BaseAggregateRoot
	SubscriberNo string
	Month        int // 1-12
	Year         int
	TotalAmount  valueobject.Money
	PaidAmount   valueobject.Money
	Status       BillStatus
	Details      []BillDetail
}

// NewBill creates a new unpaid bill for the given billing period
func NewBill(subscriberNo string, month, year int, total valueobject.Money) (*Bill, error) {
	if subscriberNo == "" {
		return nil, shared.NewDomainError("INVALID_SUBSCRIBER", "Subscriber number cannot be empty")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Year is out of range")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount cannot be negative")
	}

	bill := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SubscriberNo:      subscriberNo,
		Month:             month,
		Year:              year,
		TotalAmount:       total,
		PaidAmount:        valueobject.Zero(total.Currency()),
	}
	bill.Status = bill.deriveStatus()
	return bill, nil
}

// AddDetail appends an itemized charge line to the bill
func (b *Bill) AddDetail(serviceType, description string, amount valueobject.Money) (*BillDetail, error) {
	detail, err := NewBillDetail(b.GetID(), serviceType, description, amount)
	if err != nil {
		return nil, err
	}
	b.Details = append(b.Details, *detail)
	return detail, nil
}

// RemainingAmount returns the unpaid portion of the bill
func (b *Bill) RemainingAmount() valueobject.Money {
	return b.TotalAmount.MustSubtract(b.PaidAmount)
}

// IsFullyPaid returns true if the bill is settled
func (b *Bill) IsFullyPaid() bool {
	return b.Status == BillStatusFullyPaid
}

// ApplyPayment records a payment against the bill. The paid amount is
// capped at the total: paying more than the outstanding balance settles
// the bill and the surplus is absorbed. The returned transaction always
// carries the amount the caller requested, not the capped amount.
func (b *Bill) ApplyPayment(amount valueobject.Money) (*PaymentTransaction, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	candidate, err := b.PaidAmount.Add(amount)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Payment currency does not match the bill")
	}
	newPaid, err := candidate.Min(b.TotalAmount)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", "Payment currency does not match the bill")
	}

	b.PaidAmount = newPaid
	b.Status = b.deriveStatus()
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	return NewPaymentTransaction(b.GetID(), b.SubscriberNo, amount)
}

func (b *Bill) deriveStatus() BillStatus {
	switch {
	case b.TotalAmount.IsPositive() && b.PaidAmount.Equals(b.TotalAmount):
		return BillStatusFullyPaid
	case b.PaidAmount.IsPositive():
		return BillStatusPartiallyPaid
	default:
		return BillStatusUnpaid
	}
}
