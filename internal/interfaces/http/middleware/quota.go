package middleware

import (
	"net/http"
	"strconv"
	"time"

	appadmission "github.com/billpay/backend/internal/application/admission"
	"github.com/billpay/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DailyQuota returns a middleware that meters calls to one endpoint
// against the subscriber's daily allowance. The subscriber is resolved
// from the JWT claims; staff accounts carry no subscriber number and
// are not metered.
func DailyQuota(service *appadmission.DailyQuotaService, endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !service.Enabled() {
			c.Next()
			return
		}

		subscriberNo := GetJWTSubscriberNo(c)
		if subscriberNo == "" {
			c.Next()
			return
		}

		decision := service.Admit(c.Request.Context(), subscriberNo, endpoint)
		setRateLimitHeaders(c, decision)

		if !decision.Allowed {
			c.Header("Retry-After", strconv.FormatInt(decision.RetryAfter(time.Now()), 10))
			requestID := getRequestIDFromContext(c)
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeQuotaExceeded,
					"Daily quota for this endpoint is exhausted", requestID))
			return
		}

		c.Next()
	}
}
