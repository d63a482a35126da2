package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.Level)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected string
	}{
		{"debug", "debug", "DEBUG"},
		{"Debug uppercase", "DEBUG", "DEBUG"},
		{"info", "info", "INFO"},
		{"warn", "warn", "WARN"},
		{"warning alias", "warning", "WARN"},
		{"error", "error", "ERROR"},
		{"unknown defaults to info", "unknown", "INFO"},
		{"empty defaults to info", "", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level).String())
		})
	}
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Format: "json", Level: "debug", Output: &buf})
	defer Setup(DefaultConfig())

	Component("feed").Debug("query superseded", "generation", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "query superseded", line["msg"])
	assert.Equal(t, "feed", line["component"])
	assert.Equal(t, float64(3), line["generation"])
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Format: "text", Level: "warn", Output: &buf})
	defer Setup(DefaultConfig())

	Info("hidden")
	Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestGet_ReturnsDefaultBeforeSetup(t *testing.T) {
	old := logger.Swap(nil)
	defer logger.Store(old)

	assert.NotNil(t, Get())
}

func TestLogFunctions_DoNotPanic(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Format: "text", Level: "debug", Output: &buf})
	defer Setup(DefaultConfig())

	assert.NotPanics(t, func() {
		Debug("debug message", "key", "value")
		Info("info message", "key", "value")
		Warn("warn message", "key", "value")
		Error("error message", "key", "value")
	})
}
