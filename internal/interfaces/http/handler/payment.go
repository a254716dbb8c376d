package handler

import (
	billingapp "github.com/billpay/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler handles the payment endpoint
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
	logger         *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// Pay applies a payment against one billing period. The endpoint is
// open to payment terminals and banking apps, so it carries no JWT;
// the global throttle still applies.
// POST /api/v1/pay
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req billingapp.PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.paymentService.Pay(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.logger.Info("Payment accepted",
		zap.String("subscriber_no", result.SubscriberNo),
		zap.String("period", result.Period),
		zap.String("amount_received", result.AmountReceived),
		zap.String("bill_status", result.BillStatus))
	h.Success(c, result)
}
