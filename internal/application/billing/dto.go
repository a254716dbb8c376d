package billing

import (
	"fmt"
	"time"

	"github.com/billpay/backend/internal/domain/billing"
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBillRequest represents a request to issue a bill for a billing period
type CreateBillRequest struct {
	SubscriberNo string          `json:"subscriber_no" binding:"required,min=5,max=20"`
	Month        int             `json:"month" binding:"required,min=1,max=12"`
	Year         int             `json:"year" binding:"required,min=2000,max=2100"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"required"`
	Details      []DetailInput   `json:"details" binding:"omitempty,dive"`
}

// DetailInput represents one itemized charge line on a new bill
type DetailInput struct {
	ServiceType string          `json:"service_type" binding:"omitempty,max=30"`
	Description string          `json:"description" binding:"max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// AddDetailRequest represents a request to append a charge line to an existing bill
type AddDetailRequest struct {
	SubscriberNo string          `json:"subscriber_no" binding:"required,min=5,max=20"`
	Month        int             `json:"month" binding:"required,min=1,max=12"`
	Year         int             `json:"year" binding:"required,min=2000,max=2100"`
	ServiceType  string          `json:"service_type" binding:"omitempty,max=30"`
	Description  string          `json:"description" binding:"max=500"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// PayBillRequest represents a payment against a billing period
type PayBillRequest struct {
	SubscriberNo string          `json:"subscriber_no" binding:"required,min=5,max=20"`
	Month        int             `json:"month" binding:"required,min=1,max=12"`
	Year         int             `json:"year" binding:"required,min=2000,max=2100"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// BillSummaryResponse is the compact bill view returned by queries
type BillSummaryResponse struct {
	SubscriberNo    string `json:"subscriber_no"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
	Period          string `json:"period"`
	TotalAmount     string `json:"total_amount"`
	PaidAmount      string `json:"paid_amount"`
	RemainingAmount string `json:"remaining_amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// BillResponse is the full bill view including identifiers and timestamps
type BillResponse struct {
	ID uuid.UUID `json:"id"`
	BillSummaryResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillDetailResponse represents one charge line
type BillDetailResponse struct {
	ID          uuid.UUID `json:"id"`
	ServiceType string    `json:"service_type"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
}

// DetailedBillResponse combines the bill summary with a page of charge lines
type DetailedBillResponse struct {
	Bill       BillSummaryResponse  `json:"bill"`
	Details    []BillDetailResponse `json:"details"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// PaymentResultResponse reports the outcome of a payment
type PaymentResultResponse struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	SubscriberNo    string    `json:"subscriber_no"`
	Period          string    `json:"period"`
	AmountReceived  string    `json:"amount_received"`
	PaidAmount      string    `json:"paid_amount"`
	RemainingAmount string    `json:"remaining_amount"`
	Currency        string    `json:"currency"`
	BillStatus      string    `json:"bill_status"`
}

// TransactionResponse represents one payment log entry
type TransactionResponse struct {
	ID           uuid.UUID `json:"id"`
	BillID       uuid.UUID `json:"bill_id"`
	SubscriberNo string    `json:"subscriber_no"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// formatPeriod renders a billing period as YYYY-MM
func formatPeriod(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ToBillSummaryResponse converts a domain Bill to its summary view
func ToBillSummaryResponse(b *billing.Bill) BillSummaryResponse {
	return BillSummaryResponse{
		SubscriberNo:    b.SubscriberNo,
		Month:           b.Month,
		Year:            b.Year,
		Period:          formatPeriod(b.Month, b.Year),
		TotalAmount:     b.TotalAmount.StringFixed(2),
		PaidAmount:      b.PaidAmount.StringFixed(2),
		RemainingAmount: b.RemainingAmount().StringFixed(2),
		Currency:        string(b.TotalAmount.Currency()),
		Status:          b.Status.String(),
	}
}

// ToBillResponse converts a domain Bill to its full view
func ToBillResponse(b *billing.Bill) BillResponse {
	return BillResponse{
		ID:                  b.GetID(),
		BillSummaryResponse: ToBillSummaryResponse(b),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// ToBillDetailResponse converts a domain BillDetail to its view
func ToBillDetailResponse(d *billing.BillDetail) BillDetailResponse {
	return BillDetailResponse{
		ID:          d.GetID(),
		ServiceType: d.ServiceType,
		Description: d.Description,
		Amount:      d.Amount.StringFixed(2),
		Currency:    string(d.Amount.Currency()),
	}
}

// ToDetailedBillResponse combines a bill with a page of its charge lines
func ToDetailedBillResponse(b *billing.Bill, page shared.Paginated[billing.BillDetail]) DetailedBillResponse {
	details := make([]BillDetailResponse, len(page.Items))
	for i := range page.Items {
		details[i] = ToBillDetailResponse(&page.Items[i])
	}
	return DetailedBillResponse{
		Bill:       ToBillSummaryResponse(b),
		Details:    details,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// ToTransactionResponse converts a domain PaymentTransaction to its view
func ToTransactionResponse(tx *billing.PaymentTransaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.GetID(),
		BillID:       tx.BillID,
		SubscriberNo: tx.SubscriberNo,
		Amount:       tx.Amount.StringFixed(2),
		Currency:     string(tx.Amount.Currency()),
		Status:       string(tx.Status),
		CreatedAt:    tx.CreatedAt,
	}
}
