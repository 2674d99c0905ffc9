package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/jaekwang-park/todo-web/internal/middleware"
)

func TestSetAndGetRequestID(t *testing.T) {
	ctx := context.Background()

	// Before setting — should return empty
	if got := middleware.GetRequestID(ctx); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	ctx = middleware.SetRequestID(ctx, "req-abc")

	if got := middleware.GetRequestID(ctx); got != "req-abc" {
		t.Errorf("expected req-abc, got %q", got)
	}
}

func TestContextHandler_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(middleware.NewContextHandler(slog.NewTextHandler(&buf, nil))).With("service", "todo")

	logger.InfoContext(middleware.SetRequestID(context.Background(), "req-1"), "with id")
	logger.InfoContext(context.Background(), "without id")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "request_id=req-1") || !strings.Contains(lines[0], "service=todo") {
		t.Errorf("expected request id and service attrs, got: %s", lines[0])
	}
	if strings.Contains(lines[1], "request_id") {
		t.Errorf("expected no request id, got: %s", lines[1])
	}
}
