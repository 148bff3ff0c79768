package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "WARNING", want: slog.LevelWarn},
		{in: "ERROR", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "bogus", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestSetupJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})

	logger.Info("server started", "port", "8111")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.Equal(t, "8111", entry["port"])
}

func TestSetupLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: slog.LevelWarn, Output: &buf})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
