// Package logging emits the gateway's structured JSON-line events on top of
// log/slog: authentication failure, rate-limit rejection, each fallback
// attempt outcome, successful completion, and persistence failure.
package logging

import (
	"context"
	"log/slog"
	"os"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// New returns a JSON-line slog.Logger writing to w at the given level.
func New(w *os.File, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// AuthFailure logs a failed authentication attempt.
func AuthFailure(ctx context.Context, log *slog.Logger, err error) {
	log.LogAttrs(ctx, slog.LevelWarn, "authentication failed",
		slog.String("request_id", gateway.RequestIDFromContext(ctx)),
		slog.String("error_type", gateway.ErrorType(err)),
	)
}

// RateLimitRejected logs a request rejected by the per-key rate limiter.
func RateLimitRejected(ctx context.Context, log *slog.Logger, apiKeyID string) {
	log.LogAttrs(ctx, slog.LevelWarn, "rate limit rejected",
		slog.String("request_id", gateway.RequestIDFromContext(ctx)),
		slog.String("api_key_id", apiKeyID),
	)
}

// FallbackAttempt logs the outcome of a single provider attempt within the
// fallback chain.
func FallbackAttempt(ctx context.Context, log *slog.Logger, apiKeyID, provider string, latencyMs int64, err error) {
	attrs := []slog.Attr{
		slog.String("request_id", gateway.RequestIDFromContext(ctx)),
		slog.String("api_key_id", apiKeyID),
		slog.String("provider", provider),
		slog.Int64("latency_ms", latencyMs),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error_type", gateway.ErrorType(err)))
		log.LogAttrs(ctx, slog.LevelWarn, "fallback attempt failed", attrs...)
		return
	}
	log.LogAttrs(ctx, slog.LevelInfo, "fallback attempt succeeded", attrs...)
}

// Completion logs a successfully completed chat request.
func Completion(ctx context.Context, log *slog.Logger, apiKeyID, provider string, latencyMs int64, costUSD float64, fallbackUsed bool) {
	log.LogAttrs(ctx, slog.LevelInfo, "request completed",
		slog.String("request_id", gateway.RequestIDFromContext(ctx)),
		slog.String("api_key_id", apiKeyID),
		slog.String("provider", provider),
		slog.Int64("latency_ms", latencyMs),
		slog.Float64("cost_usd", costUSD),
		slog.Bool("fallback_used", fallbackUsed),
	)
}

// PersistenceFailure logs a failed cost-record write. The request itself
// still succeeds; durability of the cost row is best-effort.
func PersistenceFailure(ctx context.Context, log *slog.Logger, apiKeyID string, err error) {
	log.LogAttrs(ctx, slog.LevelError, "cost record persistence failed",
		slog.String("request_id", gateway.RequestIDFromContext(ctx)),
		slog.String("api_key_id", apiKeyID),
		slog.String("error", err.Error()),
	)
}
