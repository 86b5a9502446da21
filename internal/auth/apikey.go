// Package auth implements API key authentication for the gateway. Credentials
// are verified with bcrypt against key_hash; a short-lived cache keyed by a
// SHA-256 digest of the raw credential spares the cost-hardened comparison
// on every request.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
	"golang.org/x/crypto/bcrypt"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/storage"
)

const (
	cacheTTL    = 60 * time.Second
	cacheMaxLen = 10_000
)

// APIKeyAuth authenticates bearer-token requests against APIKeyStore.
type APIKeyAuth struct {
	store       storage.APIKeyStore
	cache       *otter.Cache[string, *gateway.Identity]
	keyIDToHash sync.Map // keyID -> cache key, for invalidation on deactivation
}

// NewAPIKeyAuth returns a new APIKeyAuth backed by store.
func NewAPIKeyAuth(store storage.APIKeyStore) (*APIKeyAuth, error) {
	c, err := otter.New(&otter.Options[string, *gateway.Identity]{
		MaximumSize:      cacheMaxLen,
		ExpiryCalculator: otter.ExpiryWriting[string, *gateway.Identity](cacheTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create auth cache: %w", err)
	}
	return &APIKeyAuth{store: store, cache: c}, nil
}

// Authenticate extracts a bearer credential, checks the cache, and on miss
// scans every active key bcrypt-comparing against the credential.
func (a *APIKeyAuth) Authenticate(ctx context.Context, r *http.Request) (*gateway.Identity, error) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		return nil, gateway.ErrAuth
	}

	cacheKey := gateway.HashForCache(raw)
	if id, ok := a.cache.GetIfPresent(cacheKey); ok {
		// Re-check is_active on every cache hit by re-fetching the row;
		// invalidation happens here, at the next lookup after a flip.
		key, err := a.store.Get(ctx, id.KeyID)
		if err != nil || !key.IsActive {
			a.cache.Invalidate(cacheKey)
			a.keyIDToHash.Delete(id.KeyID)
			return nil, gateway.ErrAuth
		}
		return id, nil
	}

	keys, err := a.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: list active keys: %w", err)
	}

	for _, key := range keys {
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(raw)) == nil {
			id := &gateway.Identity{
				KeyID:              key.ID,
				Name:               key.Name,
				RateLimitPerMinute: key.RateLimitPerMinute,
			}
			a.cache.Set(cacheKey, id)
			a.keyIDToHash.Store(key.ID, cacheKey)
			return id, nil
		}
	}

	return nil, gateway.ErrAuth
}

// InvalidateByKeyID removes a cached identity by its key ID. Used when a
// key's is_active flag is flipped out from under an active cache entry.
func (a *APIKeyAuth) InvalidateByKeyID(keyID string) {
	if cacheKey, ok := a.keyIDToHash.LoadAndDelete(keyID); ok {
		a.cache.Invalidate(cacheKey.(string))
	}
}
