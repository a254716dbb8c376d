package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billpay/backend/internal/infrastructure/auth"
	"github.com/billpay/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "billpay-test",
		MaxRefreshCount:        5,
	})
}

func issueToken(t *testing.T, service *auth.JWTService, role, subscriberNo string) string {
	t.Helper()
	pair, err := service.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:       uuid.New(),
		Username:     "someone",
		Role:         role,
		SubscriberNo: subscriberNo,
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestJWT(t *testing.T) {
	jwtService := newTestJWTService()

	newRouter := func(skipPaths ...string) *gin.Engine {
		router := gin.New()
		router.Use(JWT(JWTConfig{
			JWTService: jwtService,
			Logger:     zap.NewNop(),
			SkipPaths:  skipPaths,
		}))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"role":          GetJWTRole(c),
				"subscriber_no": GetJWTSubscriberNo(c),
			})
		})
		router.GET("/open", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("rejects request without a token", func(t *testing.T) {
		router := newRouter()

		req := httptest.NewRequest("GET", "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("rejects a malformed Authorization header", func(t *testing.T) {
		router := newRouter()

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		router := newRouter()

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("stores claims for a valid token", func(t *testing.T) {
		router := newRouter()
		token := issueToken(t, jwtService, "subscriber", "5551000001")

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "subscriber")
		assert.Contains(t, w.Body.String(), "5551000001")
	})

	t.Run("skip paths bypass authentication", func(t *testing.T) {
		router := newRouter("/open")

		req := httptest.NewRequest("GET", "/open", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a refresh token on access endpoints", func(t *testing.T) {
		router := newRouter()
		pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   uuid.New(),
			Username: "someone",
			Role:     "admin",
		})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	jwtService := newTestJWTService()

	newRouter := func(roles ...string) *gin.Engine {
		router := gin.New()
		router.Use(JWT(JWTConfig{JWTService: jwtService, Logger: zap.NewNop()}))
		router.GET("/staff", RequireRoles(roles...), func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})
		return router
	}

	t.Run("admits a listed role", func(t *testing.T) {
		router := newRouter("admin", "banking")
		token := issueToken(t, jwtService, "banking", "")

		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an unlisted role", func(t *testing.T) {
		router := newRouter("admin")
		token := issueToken(t, jwtService, "subscriber", "5551000001")

		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
	})
}
