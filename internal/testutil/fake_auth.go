// Package testutil provides configurable test fakes for gateway interfaces.
package testutil

import (
	"context"
	"net/http"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// FakeAuth always authenticates successfully as the given identity.
type FakeAuth struct {
	Identity *gateway.Identity
}

// Authenticate returns the configured identity, defaulting to a single
// unlimited test key when none was set.
func (f FakeAuth) Authenticate(_ context.Context, _ *http.Request) (*gateway.Identity, error) {
	if f.Identity != nil {
		return f.Identity, nil
	}
	return &gateway.Identity{KeyID: "test-key", Name: "test", RateLimitPerMinute: 0}, nil
}

// RejectAuth always rejects authentication.
type RejectAuth struct{}

// Authenticate always returns gateway.ErrAuth.
func (RejectAuth) Authenticate(context.Context, *http.Request) (*gateway.Identity, error) {
	return nil, gateway.ErrAuth
}
