package sqlite

import (
	"context"
	"time"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// Insert writes one cost record row synchronously. The caller treats a
// failure here as best-effort: the HTTP response has already been produced.
func (s *Store) Insert(ctx context.Context, rec *gateway.CostRecord) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO cost_records
			(id, api_key_id, request_id, provider, model, tokens_in, tokens_out,
			 cost_usd, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.APIKeyID, rec.RequestID, rec.Provider, rec.Model,
		rec.TokensIn, rec.TokensOut, rec.CostUSD, rec.LatencyMs,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}
