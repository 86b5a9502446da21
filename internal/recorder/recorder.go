// Package recorder writes cost attribution rows synchronously, relative to
// the HTTP response, so clients see cost data immediately.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/storage"
)

const acquireTimeout = 5 * time.Second

// Recorder writes one CostRecord row per successful request.
type Recorder struct {
	store storage.CostRecordStore
}

// New returns a Recorder backed by store.
func New(store storage.CostRecordStore) *Recorder {
	return &Recorder{store: store}
}

// Input is the set of fields the request handler has on hand after a
// successful fallback attempt.
type Input struct {
	APIKeyID  string
	RequestID string
	Provider  string
	Model     string
	TokensIn  int
	TokensOut int
	CostUSD   string
	LatencyMs int64
}

// Record writes rec synchronously, bounded by a short acquisition timeout so
// a stalled connection pool cannot cascade into unbounded request latency.
// A write failure is returned to the caller, which logs it and still
// returns the already-produced upstream response to the client.
func (r *Recorder) Record(ctx context.Context, in Input) error {
	writeCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	rec := &gateway.CostRecord{
		ID:        uuid.Must(uuid.NewV7()).String(),
		APIKeyID:  in.APIKeyID,
		RequestID: in.RequestID,
		Provider:  in.Provider,
		Model:     in.Model,
		TokensIn:  in.TokensIn,
		TokensOut: in.TokensOut,
		CostUSD:   in.CostUSD,
		LatencyMs: in.LatencyMs,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.Insert(writeCtx, rec); err != nil {
		slog.LogAttrs(ctx, slog.LevelError, "cost record write failed",
			slog.String("request_id", in.RequestID),
			slog.String("api_key_id", in.APIKeyID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}
