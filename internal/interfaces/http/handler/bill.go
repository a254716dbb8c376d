package handler

import (
	billingapp "github.com/billpay/backend/internal/application/billing"
	"github.com/billpay/backend/internal/domain/identity"
	"github.com/billpay/backend/internal/interfaces/http/dto"
	"github.com/billpay/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BillHandler handles bill query and administration endpoints
type BillHandler struct {
	BaseHandler
	billService *billingapp.BillService
	logger      *zap.Logger
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *billingapp.BillService, logger *zap.Logger) *BillHandler {
	return &BillHandler{
		billService: billService,
		logger:      logger,
	}
}

// canAccessSubscriber reports whether the caller may read data of the
// given subscriber. Staff roles see everything, subscribers only their
// own bills.
func canAccessSubscriber(c *gin.Context, subscriberNo string) bool {
	if middleware.GetJWTRole(c) != identity.RoleSubscriber.String() {
		return true
	}
	return middleware.GetJWTSubscriberNo(c) == subscriberNo
}

// QueryBill returns the bill summary for one billing period
// GET /api/v1/bills
func (h *BillHandler) QueryBill(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	if !canAccessSubscriber(c, req.SubscriberNo) {
		h.Forbidden(c, "Subscribers may only query their own bills")
		return
	}

	bill, err := h.billService.QueryBill(c.Request.Context(), req.SubscriberNo, req.Month, req.Year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bill)
}

// QueryBillDetailed returns the bill with a page of its charge lines
// GET /api/v1/bills/detailed
func (h *BillHandler) QueryBillDetailed(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	if !canAccessSubscriber(c, req.SubscriberNo) {
		h.Forbidden(c, "Subscribers may only query their own bills")
		return
	}

	result, err := h.billService.QueryBillDetailed(c.Request.Context(),
		req.SubscriberNo, req.Month, req.Year, list.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListUnpaid returns all bills of a subscriber that still carry debt,
// newest period first
// GET /api/v1/bills/unpaid
func (h *BillHandler) ListUnpaid(c *gin.Context) {
	subscriberNo := c.Query("subscriber_no")
	if subscriberNo == "" {
		h.BadRequest(c, "subscriber_no is required")
		return
	}

	bills, err := h.billService.ListUnpaidBills(c.Request.Context(), subscriberNo)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, bills)
}

// ListTransactions returns the payment log of one billing period in
// arrival order
// GET /api/v1/bills/transactions
func (h *BillHandler) ListTransactions(c *gin.Context) {
	var req dto.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	transactions, err := h.billService.ListTransactions(c.Request.Context(),
		req.SubscriberNo, req.Month, req.Year)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, transactions)
}

// CreateBill issues a bill for a billing period
// POST /api/v1/admin/bills
func (h *BillHandler) CreateBill(c *gin.Context) {
	var req billingapp.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.logger.Info("Bill created",
		zap.String("subscriber_no", bill.SubscriberNo),
		zap.String("period", bill.Period),
		zap.String("total_amount", bill.TotalAmount))
	h.Created(c, bill)
}

// AddDetail appends a charge line to an existing bill
// POST /api/v1/admin/bills/details
func (h *BillHandler) AddDetail(c *gin.Context) {
	var req billingapp.AddDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	detail, err := h.billService.AddDetail(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, detail)
}
