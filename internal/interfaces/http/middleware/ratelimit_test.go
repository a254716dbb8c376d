package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appadmission "github.com/billpay/backend/internal/application/admission"
	"github.com/billpay/backend/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newThrottle(scope string, limit int64) *appadmission.ThrottleService {
	return appadmission.NewThrottleService(
		ratelimit.NewMemoryCounterStore(),
		appadmission.ThrottleConfig{Scope: scope, Limit: limit, Window: time.Minute},
		zap.NewNop(),
	)
}

func TestGlobalThrottle(t *testing.T) {
	t.Run("admits up to the limit then rejects", func(t *testing.T) {
		router := gin.New()
		router.Use(GlobalThrottle(newThrottle("global", 3)))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("emits rate limit headers on allowed requests", func(t *testing.T) {
		router := gin.New()
		router.Use(GlobalThrottle(newThrottle("global", 5)))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("rejected requests still consume the window", func(t *testing.T) {
		router := gin.New()
		router.Use(GlobalThrottle(newThrottle("global", 1)))
		router.GET("/missing", func(c *gin.Context) {
			c.String(http.StatusNotFound, "nope")
		})

		req := httptest.NewRequest("GET", "/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestAuthThrottle(t *testing.T) {
	// loginOutcome lets each test script the handler's responses
	newLoginRouter := func(service *appadmission.ThrottleService, allowlist []string, outcome *int) *gin.Engine {
		router := gin.New()
		router.POST("/login", AuthThrottle(service, allowlist), func(c *gin.Context) {
			c.String(*outcome, "done")
		})
		return router
	}

	t.Run("only failures consume the budget", func(t *testing.T) {
		outcome := http.StatusOK
		router := newLoginRouter(newThrottle("auth", 2), nil, &outcome)

		// Successful logins never trip the throttle
		for i := 0; i < 10; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}

		// Two failures exhaust the budget, the third attempt is blocked
		outcome = http.StatusUnauthorized
		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")

		// Even correct credentials are blocked once the window is spent
		outcome = http.StatusOK
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("allowlisted clients bypass the throttle", func(t *testing.T) {
		outcome := http.StatusUnauthorized
		// httptest requests arrive from 192.0.2.1
		router := newLoginRouter(newThrottle("auth", 1), []string{"192.0.2.1"}, &outcome)

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}
	})
}
