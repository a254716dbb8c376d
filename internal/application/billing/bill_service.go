package billing

import (
	"context"

	"github.com/billpay/backend/internal/domain/billing"
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// BillService handles bill issuing and queries
type BillService struct {
	billRepo billing.BillRepository
	logger   *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(billRepo billing.BillRepository, logger *zap.Logger) *BillService {
	return &BillService{
		billRepo: billRepo,
		logger:   logger,
	}
}

// CreateBill issues a new bill for a billing period
func (s *BillService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResponse, error) {
	total := valueobject.NewMoneyTRY(req.TotalAmount)

	bill, err := billing.NewBill(req.SubscriberNo, req.Month, req.Year, total)
	if err != nil {
		return nil, err
	}

	// A bill with no itemization still gets one line covering the
	// billed amount, so detailed queries never come back empty
	if len(req.Details) == 0 {
		if _, err := bill.AddDetail(billing.ServiceTypeGeneral, "Bill amount", total); err != nil {
			return nil, err
		}
	}
	for _, d := range req.Details {
		if _, err := bill.AddDetail(d.ServiceType, d.Description, valueobject.NewMoneyTRY(d.Amount)); err != nil {
			return nil, err
		}
	}

	if err := s.billRepo.Create(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("Bill issued",
		zap.String("subscriber_no", bill.SubscriberNo),
		zap.Int("month", bill.Month),
		zap.Int("year", bill.Year),
		zap.String("total", bill.TotalAmount.StringFixed(2)))

	response := ToBillResponse(bill)
	return &response, nil
}

// AddDetail appends a charge line to an existing bill.
// Detail lines itemize the billed total; they do not change it.
func (s *BillService) AddDetail(ctx context.Context, req AddDetailRequest) (*BillDetailResponse, error) {
	amount := valueobject.NewMoneyTRY(req.Amount)

	var detail *billing.BillDetail
	err := s.billRepo.AppendDetail(ctx, req.SubscriberNo, req.Month, req.Year, func(bill *billing.Bill) (*billing.BillDetail, error) {
		d, err := bill.AddDetail(req.ServiceType, req.Description, amount)
		if err != nil {
			return nil, err
		}
		detail = d
		return d, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bill detail added",
		zap.String("subscriber_no", req.SubscriberNo),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.String("service_type", detail.ServiceType))

	response := ToBillDetailResponse(detail)
	return &response, nil
}

// QueryBill returns the bill summary for a billing period
func (s *BillService) QueryBill(ctx context.Context, subscriberNo string, month, year int) (*BillSummaryResponse, error) {
	bill, err := s.billRepo.FindByPeriod(ctx, subscriberNo, month, year)
	if err != nil {
		return nil, err
	}

	response := ToBillSummaryResponse(bill)
	return &response, nil
}

// QueryBillDetailed returns the bill with a page of its charge lines
func (s *BillService) QueryBillDetailed(ctx context.Context, subscriberNo string, month, year int, filter shared.Filter) (*DetailedBillResponse, error) {
	bill, err := s.billRepo.FindByPeriod(ctx, subscriberNo, month, year)
	if err != nil {
		return nil, err
	}

	page, err := s.billRepo.FindDetails(ctx, bill.GetID(), filter)
	if err != nil {
		return nil, err
	}

	response := ToDetailedBillResponse(bill, page)
	return &response, nil
}

// ListUnpaidBills returns all bills with an outstanding balance for a subscriber
func (s *BillService) ListUnpaidBills(ctx context.Context, subscriberNo string) ([]BillSummaryResponse, error) {
	bills, err := s.billRepo.FindUnpaidBySubscriber(ctx, subscriberNo)
	if err != nil {
		return nil, err
	}

	responses := make([]BillSummaryResponse, len(bills))
	for i := range bills {
		responses[i] = ToBillSummaryResponse(&bills[i])
	}
	return responses, nil
}

// ListTransactions returns the payment log for a billing period
func (s *BillService) ListTransactions(ctx context.Context, subscriberNo string, month, year int) ([]TransactionResponse, error) {
	bill, err := s.billRepo.FindByPeriod(ctx, subscriberNo, month, year)
	if err != nil {
		return nil, err
	}

	transactions, err := s.billRepo.FindTransactionsByBill(ctx, bill.GetID())
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = ToTransactionResponse(&transactions[i])
	}
	return responses, nil
}
