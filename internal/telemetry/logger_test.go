package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestContextHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "prod").With("component", "test")

	ctx := WithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if rec["request_id"] != "req-123" {
		t.Fatalf("request_id = %v, want req-123", rec["request_id"])
	}
	if rec["component"] != "test" {
		t.Fatalf("component attr lost: %v", rec)
	}
}

func TestDebugSuppressedOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %s", buf.String())
	}
}
