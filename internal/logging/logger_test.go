package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "text").Info("hello", "n", 1)
	assert.Contains(t, buf.String(), "msg=hello n=1")
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "customer_id", 7).Info("deleted")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-42")
	assert.Contains(t, out, "customer_id=7")
}

func TestFromContext_StoredLoggerWins(t *testing.T) {
	var buf bytes.Buffer
	stored := New(&buf, "info", "text").With("component", "import")

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-7")
	ctx = NewContext(ctx, stored)
	FromContext(ctx).Info("row rejected")

	out := buf.String()
	assert.Contains(t, out, "component=import")
	assert.NotContains(t, out, "request_id", "stored logger is used as is")
}

func TestNew_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "text").Debug("trace")
	assert.Contains(t, buf.String(), "source=")
}
