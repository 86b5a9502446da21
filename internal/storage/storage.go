// Package storage defines persistence interfaces for the gateway.
package storage

import (
	"context"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// APIKeyStore persists and retrieves API key credentials.
type APIKeyStore interface {
	// Create inserts a new API key row. key.KeyHash must already be the
	// bcrypt hash of the raw credential.
	Create(ctx context.Context, key *gateway.APIKey) error
	// ListActive returns every row with is_active = true. The authenticator
	// scans this list, bcrypt-comparing each row against the bearer
	// credential: bcrypt hashes are salted per-row, so there is no indexed
	// lookup by hash.
	ListActive(ctx context.Context) ([]*gateway.APIKey, error)
	// Get returns the API key row by id, or gateway.ErrNotFound.
	Get(ctx context.Context, id string) (*gateway.APIKey, error)
	// CountByName reports how many rows exist with the given name, used by
	// bootstrap to avoid re-seeding an existing key.
	CountByName(ctx context.Context, name string) (int, error)
}

// CostRecordStore persists per-request cost attribution rows.
type CostRecordStore interface {
	// Insert writes one row synchronously.
	Insert(ctx context.Context, rec *gateway.CostRecord) error
}

// Store combines every persistence interface plus lifecycle management.
type Store interface {
	APIKeyStore
	CostRecordStore
	Close() error
}
