package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"sales-inventory/pkg/ctxutil"
)

func TestRequestIDHandlerAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&RequestIDHandler{Handler: slog.NewJSONHandler(&buf, nil)}).With("service", "inventory")

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	log.InfoContext(ctx, "[test] Handle")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["request_id"] != "req-1" {
		t.Fatalf("request_id = %v", rec["request_id"])
	}
	if rec["service"] != "inventory" {
		t.Fatalf("service = %v", rec["service"])
	}
}

func TestRequestIDHandlerSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&RequestIDHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	log.InfoContext(context.Background(), "[test] Handle")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := rec["request_id"]; ok {
		t.Fatalf("unexpected request_id in %v", rec)
	}
}
