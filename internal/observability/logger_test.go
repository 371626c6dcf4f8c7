package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLoggerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	ctx := WithRequestID(context.Background(), "req-123")
	log.InfoContext(ctx, "hello")
	log.DebugContext(ctx, "dropped at info level")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}

	if line["request_id"] != "req-123" {
		t.Fatalf("request_id = %v, want req-123", line["request_id"])
	}
	if line["service"] != ServiceName {
		t.Fatalf("service = %v, want %s", line["service"], ServiceName)
	}
}
