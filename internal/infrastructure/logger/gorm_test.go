package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(t *testing.T, zapLevel zapcore.Level, gormLevel gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapLevel)
	return NewGormLogger(zap.New(core), gormLevel, opts...), recorded
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gormLog.level)
	assert.Equal(t, 200*time.Millisecond, gormLog.slowThreshold)
	assert.True(t, gormLog.skipRecordNotFound)
}

func TestNewGormLogger_Options(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithRecordNotFound(),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.skipRecordNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	clone := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.level)
	cloneLog, ok := clone.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, cloneLog.level)
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("info is formatted", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

		gormLog.Info(context.Background(), "migrated %d tables", 3)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "migrated 3 tables")
	})

	t.Run("silent suppresses info", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Silent)

		gormLog.Info(context.Background(), "migrated tables")

		assert.Empty(t, recorded.All())
	})

	t.Run("warn and error pass through", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn)

		gormLog.Warn(context.Background(), "pool nearly exhausted")
		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	traceBills := func() (string, int64) {
		return "SELECT * FROM bills WHERE subscriber_no = ?", 1
	}

	t.Run("query error", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), traceBills, errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
	})

	t.Run("record not found is skipped by default", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error)

		gormLog.Trace(context.Background(), time.Now(), traceBills, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("record not found reported when opted in", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.ErrorLevel, gormlogger.Error, WithRecordNotFound())

		gormLog.Trace(context.Background(), time.Now(), traceBills, gormlogger.ErrRecordNotFound)

		require.Len(t, recorded.All(), 1)
	})

	t.Run("slow query", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.WarnLevel, gormlogger.Warn,
			WithSlowThreshold(time.Nanosecond))

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), traceBills, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("normal query at info level", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

		gormLog.Trace(context.Background(), time.Now(), traceBills, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Query", logs[0].Message)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Silent)

		gormLog.Trace(context.Background(), time.Now(), traceBills, nil)

		assert.Empty(t, recorded.All())
	})

	t.Run("context identity is attached", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(t, zapcore.DebugLevel, gormlogger.Info)

		ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
		ctx = context.WithValue(ctx, SubscriberNoKey, "5551000001")

		gormLog.Trace(ctx, time.Now(), traceBills, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)

		fields := make(map[string]string)
		for _, field := range logs[0].Context {
			if field.Type == zapcore.StringType {
				fields[field.Key] = field.String
			}
		}
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "5551000001", fields["subscriber_no"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := newObservedGormLogger(t, zapcore.InfoLevel, gormlogger.Info)

	var _ gormlogger.Interface = gormLog
}
