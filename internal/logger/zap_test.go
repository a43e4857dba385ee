package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "info", Format: "json", Output: path}, SentryConfig{})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("rating submitted", zap.String("item_id", "i1"), zap.Int64("delta", 15))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"rating submitted"`)
	assert.Contains(t, string(data), `"delta":15`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", Format: "console", Output: "stderr"}, SentryConfig{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_SentryWithoutDSNIsDisabled(t *testing.T) {
	log, err := New(Config{Level: "info"}, SentryConfig{Enabled: true})
	require.NoError(t, err)
	assert.False(t, log.sentryEnabled)
}

func TestBuildEvent(t *testing.T) {
	entry := zapcore.Entry{
		Level:   zapcore.ErrorLevel,
		Message: "submit rating failed",
		Time:    time.Now(),
	}
	fields := []zapcore.Field{
		zap.String("item_id", "i1"),
		zap.Float64("rating_mean", 4.5),
		zap.Bool("repair", true),
		zap.Error(errors.New("connection refused")),
	}

	event := buildEvent(entry, fields)

	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "submit rating failed", event.Message)
	assert.Equal(t, "i1", event.Tags["item_id"])
	assert.Equal(t, 4.5, event.Extra["rating_mean"])
	assert.Equal(t, true, event.Extra["repair"])
	assert.Equal(t, "connection refused", event.Extra["error"])
}

func TestSentryCore_OnlyErrors(t *testing.T) {
	core := newSentryCore(zapcore.ErrorLevel)

	warn := core.Check(zapcore.Entry{Level: zapcore.WarnLevel}, nil)
	assert.Nil(t, warn)

	child := core.With([]zapcore.Field{zap.String("op", "audit")}).(*sentryCore)
	assert.Len(t, child.fields, 1)
	assert.Empty(t, core.fields)
}
