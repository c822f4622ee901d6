package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	for _, tc := range []struct {
		name          string
		log           func(Logger, string)
		expectedLevel zapcore.Level
	}{
		{
			name:          "Debug",
			log:           func(l Logger, msg string) { l.Debug(msg) },
			expectedLevel: zapcore.DebugLevel,
		},
		{
			name:          "Info",
			log:           func(l Logger, msg string) { l.Info(msg) },
			expectedLevel: zapcore.InfoLevel,
		},
		{
			name:          "WarnWithContext",
			log:           func(l Logger, msg string) { l.WarnWithContext(context.Background(), msg) },
			expectedLevel: zapcore.WarnLevel,
		},
		{
			name:          "ErrorWithContext",
			log:           func(l Logger, msg string) { l.ErrorWithContext(context.Background(), msg) },
			expectedLevel: zapcore.ErrorLevel,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, logs := NewObserverLogger("debug")
			tc.log(l, "level reached")

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			require.Equal(t, "level reached", entry.Message)
			require.Equal(t, tc.expectedLevel, entry.Level)
			require.Empty(t, entry.ContextMap())
		})
	}
}

func TestObserverLevelFilter(t *testing.T) {
	l, logs := NewObserverLogger("warn")
	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "kept", logs.All()[0].Message)
}

func TestWithFields(t *testing.T) {
	l, logs := NewObserverLogger("debug")

	child := l.With(zap.Int("depth", 3))
	child.Info("level")
	l.Info("level")

	require.Equal(t, map[string]interface{}{"depth": int64(3)}, logs.All()[0].ContextMap())
	require.Empty(t, logs.All()[1].ContextMap())
}

func TestNewLogger(t *testing.T) {
	t.Run("none_is_noop", func(t *testing.T) {
		l, err := NewLogger(WithLevel("none"))
		require.NoError(t, err)
		require.NotNil(t, l)
	})

	t.Run("json", func(t *testing.T) {
		l, err := NewLogger(WithFormat("json"), WithLevel("debug"), WithTimestampFormat("Unix"))
		require.NoError(t, err)
		require.NotNil(t, l)
	})

	t.Run("unknown_level", func(t *testing.T) {
		_, err := NewLogger(WithLevel("chatty"))
		require.ErrorContains(t, err, "unknown log level")
	})

	t.Run("unknown_format", func(t *testing.T) {
		_, err := NewLogger(WithFormat("xml"))
		require.ErrorContains(t, err, "unknown log format")
	})

	t.Run("must_panics", func(t *testing.T) {
		require.Panics(t, func() {
			MustNewLogger("text", "chatty", "ISO8601")
		})
	})
}
