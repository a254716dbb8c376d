package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	zapLogger := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-1")
		c.Next()
	})
	router.Use(GinMiddleware(zapLogger))
	router.GET("/bills", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	performRequest(router, "GET", "/bills")

	logs := recorded.All()
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "HTTP Request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/bills", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddleware_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/status", func(c *gin.Context) {
				c.Status(tt.status)
			})

			performRequest(router, "GET", "/status")

			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.level, logs[0].Level)
		})
	}
}

func TestGinMiddleware_AttachesLoggerToRequestContext(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	zapLogger := zap.New(core)

	var seenCtx context.Context
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-ctx")
		c.Next()
	})
	router.Use(GinMiddleware(zapLogger))
	router.GET("/bills", func(c *gin.Context) {
		seenCtx = c.Request.Context()
		c.Status(http.StatusOK)
	})

	performRequest(router, "GET", "/bills")

	require.NotNil(t, seenCtx)
	assert.Equal(t, "req-ctx", GetRequestID(seenCtx))
	// FromContext must return the request-scoped logger, not the no-op fallback
	assert.NotEqual(t, zap.NewNop(), FromContext(seenCtx))
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := performRequest(router, "GET", "/panic")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		stored := zap.NewExample()
		c.Set("logger", stored)

		assert.Same(t, stored, GetGinLogger(c))
	})

	t.Run("falls back to noop", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		assert.NotNil(t, GetGinLogger(c))
	})
}
