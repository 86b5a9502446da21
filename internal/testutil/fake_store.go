package testutil

import (
	"context"
	"sync"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// FakeStore is an in-memory implementation of storage.Store for testing.
type FakeStore struct {
	mu      sync.RWMutex
	keys    map[string]*gateway.APIKey
	records []*gateway.CostRecord
}

// NewFakeStore returns a FakeStore with empty collections.
func NewFakeStore() *FakeStore {
	return &FakeStore{keys: make(map[string]*gateway.APIKey)}
}

// AddKey inserts an API key into the fake store.
func (s *FakeStore) AddKey(k *gateway.APIKey) {
	s.mu.Lock()
	s.keys[k.ID] = k
	s.mu.Unlock()
}

// Create stores a new API key.
func (s *FakeStore) Create(_ context.Context, k *gateway.APIKey) error {
	s.AddKey(k)
	return nil
}

// ListActive returns every key with IsActive set.
func (s *FakeStore) ListActive(context.Context) ([]*gateway.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*gateway.APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		if k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

// Get returns the key by id, or gateway.ErrNotFound.
func (s *FakeStore) Get(_ context.Context, id string) (*gateway.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[id]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return k, nil
}

// CountByName reports how many keys exist with the given name.
func (s *FakeStore) CountByName(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, k := range s.keys {
		if k.Name == name {
			n++
		}
	}
	return n, nil
}

// Insert records a cost row in memory.
func (s *FakeStore) Insert(_ context.Context, rec *gateway.CostRecord) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

// Records returns a snapshot of every inserted cost record.
func (s *FakeStore) Records() []*gateway.CostRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*gateway.CostRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Close is a no-op for the fake store.
func (s *FakeStore) Close() error { return nil }
