package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopLoggerBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("not initialized yet")
		Warn("still fine")
	})
}

func TestInitWithFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, Init("debug", path))

	Debug("written to file")
	Sync()

	assert.FileExists(t, path)
}

func TestInitRejectsUnwritableFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	err := Init("info", filepath.Join(t.TempDir(), "missing", "dir", "service.log"))
	assert.Error(t, err)
}

func TestForTicker(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	core, logs := observer.New(zapcore.DebugLevel)
	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	ForTicker("AAPL", zap.Int("posts", 3)).Info("sentiment aggregated")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sentiment aggregated", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"ticker": "AAPL", "posts": int64(3)}, entries[0].ContextMap())
	assert.Contains(t, entries[0].Caller.File, "logger_test.go")
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("verbose", ""))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))
}
