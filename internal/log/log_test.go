package log

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *strings.Builder) *Logger {
	return New(Config{Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestWithComponent(t *testing.T) {
	var buf strings.Builder
	logger := newBufferLogger(&buf).WithComponent(ComponentStore)
	if logger.Component() != ComponentStore {
		t.Fatalf("Component() = %q", logger.Component())
	}
	logger.Info("saved", FieldCollection, "organizations")
	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=store") {
		t.Fatalf("unexpected record %q", out)
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != ComponentApp {
		t.Fatalf("fallback component = %q", got.Component())
	}
	var buf strings.Builder
	logger := newBufferLogger(&buf).WithComponent(ComponentHTTP)
	if got := FromContext(IntoContext(context.Background(), logger)); got != logger {
		t.Fatal("installed logger not returned")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{503, "level=ERROR"},
	}
	for _, tt := range tests {
		var buf strings.Builder
		sl := NewStructuredLogger(newBufferLogger(&buf))
		sl.LogHTTPEnd(context.Background(), httptest.NewRequest("GET", "/api/dashboard", nil), tt.status, 3, "10.0.0.1")
		if !strings.Contains(buf.String(), tt.level) {
			t.Fatalf("status %d logged %q, want %s", tt.status, buf.String(), tt.level)
		}
	}
}

func TestLogImportWarnsOnFailures(t *testing.T) {
	var buf strings.Builder
	sl := NewStructuredLogger(newBufferLogger(&buf))
	sl.LogImport(context.Background(), "organizations", 3, 1)
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "failed=1") {
		t.Fatalf("unexpected record %q", out)
	}
}
