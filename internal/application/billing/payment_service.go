package billing

import (
	"context"
	"errors"

	"github.com/billpay/backend/internal/domain/billing"
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"github.com/billpay/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentService processes payments against bills.
// A payment must never be lost or double-applied: the repository holds
// a row lock for the whole read-modify-write, a lost lock is retried
// exactly once, and any storage failure rejects the payment instead of
// guessing.
type PaymentService struct {
	billRepo billing.BillRepository
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(billRepo billing.BillRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		billRepo: billRepo,
		logger:   logger,
	}
}

// Pay applies a payment to the bill for the given period.
// Amounts above the outstanding balance settle the bill; the recorded
// transaction keeps the requested amount either way.
func (s *PaymentService) Pay(ctx context.Context, req PayBillRequest) (*PaymentResultResponse, error) {
	amount := valueobject.NewMoneyTRY(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	log := logger.WithLogger(ctx, s.logger)

	result, err := s.payOnce(ctx, log, req, amount)
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		log.Warn("Payment hit a row lock conflict, retrying",
			zap.String("subscriber_no", req.SubscriberNo),
			zap.Int("month", req.Month),
			zap.Int("year", req.Year))
		result, err = s.payOnce(ctx, log, req, amount)
	}
	if err != nil {
		return nil, s.mapPaymentError(log, err, req)
	}
	return result, nil
}

func (s *PaymentService) payOnce(ctx context.Context, log *logger.ContextLogger, req PayBillRequest, amount valueobject.Money) (*PaymentResultResponse, error) {
	var result *PaymentResultResponse

	err := s.billRepo.Pay(ctx, req.SubscriberNo, req.Month, req.Year, func(bill *billing.Bill) (*billing.PaymentTransaction, error) {
		tx, err := bill.ApplyPayment(amount)
		if err != nil {
			return nil, err
		}
		result = &PaymentResultResponse{
			TransactionID:   tx.GetID(),
			SubscriberNo:    bill.SubscriberNo,
			Period:          formatPeriod(bill.Month, bill.Year),
			AmountReceived:  tx.Amount.StringFixed(2),
			PaidAmount:      bill.PaidAmount.StringFixed(2),
			RemainingAmount: bill.RemainingAmount().StringFixed(2),
			Currency:        string(bill.TotalAmount.Currency()),
			BillStatus:      bill.Status.String(),
		}
		return tx, nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Payment applied",
		zap.String("subscriber_no", req.SubscriberNo),
		zap.String("period", result.Period),
		zap.String("amount", result.AmountReceived),
		zap.String("bill_status", result.BillStatus))

	return result, nil
}

// mapPaymentError keeps domain outcomes intact and converts storage
// failures into an unavailable answer rather than a silent success.
func (s *PaymentService) mapPaymentError(log *logger.ContextLogger, err error, req PayBillRequest) error {
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		log.Warn("Payment rejected after retry, lock conflict persists",
			zap.String("subscriber_no", req.SubscriberNo),
			zap.Int("month", req.Month),
			zap.Int("year", req.Year))
		return shared.ErrUnavailable
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	log.Error("Payment failed on storage error",
		zap.String("subscriber_no", req.SubscriberNo),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Error(err))
	return shared.ErrUnavailable
}
