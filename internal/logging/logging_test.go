package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	gateway "github.com/corvid-systems/llmgate/internal"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v\nraw: %s", err, buf.String())
	}
	return m
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()
	log := New(os.Stdout, slog.LevelInfo)
	if log == nil {
		t.Fatal("New returned nil")
	}
}

func TestAuthFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	ctx := gateway.ContextWithRequestID(context.Background(), "req-abc123")

	AuthFailure(ctx, log, gateway.ErrAuth)

	m := decodeLine(t, &buf)
	if m["request_id"] != "req-abc123" {
		t.Errorf("request_id = %v, want req-abc123", m["request_id"])
	}
	if m["error_type"] != "AuthError" {
		t.Errorf("error_type missing or unexpected: %v", m["error_type"])
	}
}

func TestRateLimitRejected(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	ctx := gateway.ContextWithRequestID(context.Background(), "req-xyz")

	RateLimitRejected(ctx, log, "key-1")

	m := decodeLine(t, &buf)
	if m["api_key_id"] != "key-1" {
		t.Errorf("api_key_id = %v, want key-1", m["api_key_id"])
	}
}

func TestFallbackAttemptFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)
	ctx := context.Background()

	FallbackAttempt(ctx, log, "key-1", "openai", 120, &gateway.ProviderErr{Provider: "openai", Kind: gateway.ErrProviderTimeout})

	m := decodeLine(t, &buf)
	if m["provider"] != "openai" {
		t.Errorf("provider = %v, want openai", m["provider"])
	}
	if m["latency_ms"].(float64) != 120 {
		t.Errorf("latency_ms = %v, want 120", m["latency_ms"])
	}
	if m["error_type"] == nil {
		t.Error("expected error_type on failed attempt")
	}
}

func TestFallbackAttemptSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	FallbackAttempt(context.Background(), log, "key-1", "openai", 80, nil)

	m := decodeLine(t, &buf)
	if _, ok := m["error_type"]; ok {
		t.Error("error_type should be absent on success")
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	Completion(context.Background(), log, "key-1", "openai", 250, 0.0012, true)

	m := decodeLine(t, &buf)
	if m["fallback_used"] != true {
		t.Errorf("fallback_used = %v, want true", m["fallback_used"])
	}
	if m["cost_usd"].(float64) != 0.0012 {
		t.Errorf("cost_usd = %v, want 0.0012", m["cost_usd"])
	}
}

func TestPersistenceFailure(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := newTestLogger(&buf)

	PersistenceFailure(context.Background(), log, "key-1", errors.New("db closed"))

	m := decodeLine(t, &buf)
	if m["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", m["level"])
	}
	if m["error"] != "db closed" {
		t.Errorf("error = %v, want db closed", m["error"])
	}
}
