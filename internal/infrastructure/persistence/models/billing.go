package models

import (
	"time"

	"github.com/billpay/backend/internal/domain/billing"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate root.
type BillModel struct {
	AggregateModel
	SubscriberNo string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_bills_subscriber_period,priority:1"`
	Month        int             `gorm:"not null;uniqueIndex:idx_bills_subscriber_period,priority:2"`
	Year         int             `gorm:"not null;uniqueIndex:idx_bills_subscriber_period,priority:3"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'TRY'"`
	Status       string          `gorm:"type:varchar(20);not null;default:'unpaid';index"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	total, _ := valueobject.NewMoney(m.TotalAmount, currency)
	paid, _ := valueobject.NewMoney(m.PaidAmount, currency)

	return &billing.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SubscriberNo:      m.SubscriberNo,
		Month:             m.Month,
		Year:              m.Year,
		TotalAmount:       total,
		PaidAmount:        paid,
		Status:            billing.BillStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Bill
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.SubscriberNo = b.SubscriberNo
	m.Month = b.Month
	m.Year = b.Year
	m.TotalAmount = b.TotalAmount.Amount()
	m.PaidAmount = b.PaidAmount.Amount()
	m.Currency = string(b.TotalAmount.Currency())
	m.Status = b.Status.String()
}

// BillDetailModel is the persistence model for bill detail lines.
type BillDetailModel struct {
	BaseModel
	BillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceType string          `gorm:"type:varchar(30);not null"`
	Description string          `gorm:"type:varchar(500)"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'TRY'"`
}

// TableName returns the table name for GORM
func (BillDetailModel) TableName() string {
	return "bill_details"
}

// ToDomain converts the persistence model to a domain BillDetail
func (m *BillDetailModel) ToDomain() *billing.BillDetail {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, _ := valueobject.NewMoney(m.Amount, currency)

	return &billing.BillDetail{
		BaseEntity:  m.BaseModel.ToDomain(),
		BillID:      m.BillID,
		ServiceType: m.ServiceType,
		Description: m.Description,
		Amount:      amount,
	}
}

// FromDomain populates the persistence model from a domain BillDetail
func (m *BillDetailModel) FromDomain(d *billing.BillDetail) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.BillID = d.BillID
	m.ServiceType = d.ServiceType
	m.Description = d.Description
	m.Amount = d.Amount.Amount()
	m.Currency = string(d.Amount.Currency())
}

// PaymentTransactionModel is the persistence model for the append-only payment log.
type PaymentTransactionModel struct {
	BaseModel
	BillID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubscriberNo string          `gorm:"type:varchar(20);not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'TRY'"`
	Status       string          `gorm:"type:varchar(20);not null;default:'completed'"`
}

// TableName returns the table name for GORM
func (PaymentTransactionModel) TableName() string {
	return "payment_transactions"
}

// ToDomain converts the persistence model to a domain PaymentTransaction
func (m *PaymentTransactionModel) ToDomain() *billing.PaymentTransaction {
	currency := valueobject.Currency(m.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, _ := valueobject.NewMoney(m.Amount, currency)

	return &billing.PaymentTransaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		BillID:       m.BillID,
		SubscriberNo: m.SubscriberNo,
		Amount:       amount,
		Status:       billing.TransactionStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain PaymentTransaction
func (m *PaymentTransactionModel) FromDomain(tx *billing.PaymentTransaction) {
	m.FromDomainBaseEntity(tx.BaseEntity)
	m.BillID = tx.BillID
	m.SubscriberNo = tx.SubscriberNo
	m.Amount = tx.Amount.Amount()
	m.Currency = string(tx.Amount.Currency())
	m.Status = string(tx.Status)
}

// DailyUsageModel is the persistence model for the per-subscriber daily
// quota counter. Rows are mutated only through an atomic conditional
// upsert keyed by (subscriber_no, endpoint, usage_date).
type DailyUsageModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	SubscriberNo string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_daily_usage_key,priority:1"`
	Endpoint     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_daily_usage_key,priority:2"`
	UsageDate    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_daily_usage_key,priority:3"`
	CallCount    int64     `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DailyUsageModel) TableName() string {
	return "daily_usage"
}
