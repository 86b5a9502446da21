package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// notFoundErr translates sql.ErrNoRows to gateway.ErrNotFound.
func notFoundErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.ErrNotFound
	}
	return err
}

// Create inserts a new API key row. key.KeyHash must already be bcrypt-hashed.
func (s *Store) Create(ctx context.Context, key *gateway.APIKey) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO api_keys (id, key_hash, name, rate_limit_per_minute, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key.ID, key.KeyHash, key.Name, key.RateLimitPerMinute,
		boolToInt(key.IsActive), key.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListActive returns every row with is_active = true.
func (s *Store) ListActive(ctx context.Context) ([]*gateway.APIKey, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT id, key_hash, name, rate_limit_per_minute, is_active, created_at
		 FROM api_keys WHERE is_active = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*gateway.APIKey
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Get returns the API key row by id, or gateway.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*gateway.APIKey, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT id, key_hash, name, rate_limit_per_minute, is_active, created_at
		 FROM api_keys WHERE id = ?`, id,
	)
	return scanKey(row)
}

// CountByName reports how many rows exist with the given name.
func (s *Store) CountByName(ctx context.Context, name string) (int, error) {
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM api_keys WHERE name = ?`, name,
	).Scan(&n)
	return n, err
}

func scanKey(s scanner) (*gateway.APIKey, error) {
	var k gateway.APIKey
	var createdAt string
	var isActive int

	err := s.Scan(&k.ID, &k.KeyHash, &k.Name, &k.RateLimitPerMinute, &isActive, &createdAt)
	if err != nil {
		return nil, notFoundErr(err)
	}

	k.IsActive = isActive != 0
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	k.CreatedAt = t
	return &k, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
