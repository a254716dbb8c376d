package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/billpay/backend/internal/infrastructure/auth"
	"github.com/billpay/backend/internal/infrastructure/logger"
	"github.com/billpay/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for JWT claims
const (
	ContextKeyClaims       = "jwt_claims"
	ContextKeyUserID       = "jwt_user_id"
	ContextKeyUsername     = "jwt_username"
	ContextKeyRole         = "jwt_role"
	ContextKeySubscriberNo = "jwt_subscriber_no"
)

// JWTConfig holds JWT middleware configuration
type JWTConfig struct {
	JWTService *auth.JWTService
	Logger     *zap.Logger
	// SkipPaths are exact request paths that bypass authentication
	SkipPaths []string
}

// JWT returns a middleware that validates Bearer tokens and stores the
// claims in the request context
func JWT(cfg JWTConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Token validation failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			handleAuthError(c, err)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUsername, claims.Username)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeySubscriberNo, claims.SubscriberNo)

		// Also set in request context so log entries emitted further
		// down the stack carry the caller identity
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		if claims.SubscriberNo != "" {
			ctx, _ = logger.WithSubscriberNo(ctx, logger.FromContext(ctx), claims.SubscriberNo)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractBearerToken reads the token from the Authorization header
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", auth.ErrInvalidToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

// handleAuthError aborts the request with the proper auth error response
func handleAuthError(c *gin.Context, err error) {
	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrInvalidTokenType):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	requestID := getRequestIDFromContext(c)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// RequireRoles returns a middleware that rejects requests whose JWT role
// is not in the allowed set. It must run after the JWT middleware.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetJWTClaims(c)
		if !ok {
			handleAuthError(c, auth.ErrInvalidToken)
			return
		}

		if !claims.HasRole(roles...) {
			requestID := getRequestIDFromContext(c)
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden,
					"Insufficient permissions for this operation", requestID))
			return
		}

		c.Next()
	}
}

// GetJWTClaims retrieves the validated claims from the context
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTUserID retrieves the authenticated user ID from the context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// GetJWTRole retrieves the authenticated user's role from the context
func GetJWTRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetJWTSubscriberNo retrieves the subscriber number bound to the
// authenticated user, empty for staff accounts
func GetJWTSubscriberNo(c *gin.Context) string {
	return c.GetString(ContextKeySubscriberNo)
}
