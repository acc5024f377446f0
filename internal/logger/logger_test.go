package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tfcandle/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Level: "info", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("aggregated", slog.Int("rows", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "aggregated", entry["msg"])
	assert.Equal(t, "tfcandle", entry["service"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l := New(config.Log{Level: "debug", Format: "text"}, &buf)

	l.Debug("saved upload", slog.String("id", "X"))
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "id=X")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
