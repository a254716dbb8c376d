package middleware

import (
	"net/http"
	"strconv"
	"time"

	appadmission "github.com/billpay/backend/internal/application/admission"
	"github.com/billpay/backend/internal/domain/admission"
	"github.com/billpay/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// GlobalThrottle returns a middleware that applies the service-wide
// fixed-window rate limit per client IP. Every request counts, allowed
// or not.
func GlobalThrottle(service *appadmission.ThrottleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := service.Admit(c.Request.Context(), c.ClientIP())
		setRateLimitHeaders(c, decision)

		if !decision.Allowed {
			rejectThrottled(c, decision)
			return
		}

		c.Next()
	}
}

// AuthThrottle returns a middleware that guards credential endpoints.
// Only failed attempts consume the budget: the check before the handler
// reads the counter, and the counter is incremented after the handler
// when the response indicates a failure. Allowlisted clients bypass the
// throttle entirely.
func AuthThrottle(service *appadmission.ThrottleService, allowlist []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, addr := range allowlist {
		allowed[addr] = struct{}{}
	}

	return func(c *gin.Context) {
		client := c.ClientIP()
		if _, ok := allowed[client]; ok {
			c.Next()
			return
		}

		decision := service.Check(c.Request.Context(), client)
		setRateLimitHeaders(c, decision)

		if !decision.Allowed {
			rejectThrottled(c, decision)
			return
		}

		c.Next()

		// Successful logins never consume the budget
		if c.Writer.Status() >= http.StatusBadRequest {
			service.Record(c.Request.Context(), client)
		}
	}
}

// setRateLimitHeaders emits the standard rate limit headers
func setRateLimitHeaders(c *gin.Context, decision admission.Decision) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

// rejectThrottled aborts the request with 429 and a Retry-After hint
func rejectThrottled(c *gin.Context, decision admission.Decision) {
	c.Header("Retry-After", strconv.FormatInt(decision.RetryAfter(time.Now()), 10))
	requestID := getRequestIDFromContext(c)
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeRateLimited,
			"Too many requests, please retry later", requestID))
}
