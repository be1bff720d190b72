package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.in))
		})
	}
}

func TestInitialize_ConsoleAndFile(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "bookrec.log")

	require.NoError(t, Initialize(Options{Level: "debug", File: logFile, Console: &console}))
	Log.Debug("pipeline stage", zap.String("stage", "load"))
	require.NoError(t, Close())

	assert.Contains(t, console.String(), "Logger initialized")
	assert.Contains(t, console.String(), "pipeline stage")
	assert.FileExists(t, logFile)
}

func TestInitialize_LevelFiltersDebug(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	var console bytes.Buffer
	require.NoError(t, Initialize(Options{Level: "warn", Console: &console}))
	Log.Info("hidden")
	Log.Warn("shown")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "shown")
}
