package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	var jsonOut bytes.Buffer
	NewWithWriter(&jsonOut, "info", "json").Info("scraped item", "title", "K400")
	assert.Contains(t, jsonOut.String(), `"title":"K400"`)

	var textOut bytes.Buffer
	NewWithWriter(&textOut, "info", "text").Info("scraped item", "title", "K400")
	assert.Contains(t, textOut.String(), "title=K400")

	var filtered bytes.Buffer
	NewWithWriter(&filtered, "warn", "json").Info("dropped")
	assert.Empty(t, filtered.String())
}
