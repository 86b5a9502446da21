// Package provider defines the adapter contract and registry for upstream
// LLM providers, and implements shared HTTP transport helpers.
package provider

import (
	"context"
	"fmt"
	"slices"
	"sync"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// Request is the adapter-facing translated chat request.
type Request struct {
	Messages    []gateway.Message
	Model       string // empty = adapter's DefaultModel
	Temperature *float64
	MaxTokens   *int
}

// Response is the adapter-facing normalized chat response.
type Response struct {
	ID              string
	Model           string
	Choices         []gateway.Choice
	TokensIn        int
	TokensOut       int
	TokensEstimated bool
	RawLatencyMs    int64
}

// Adapter is the uniform contract every provider variant implements.
// It must not retry internally; retry/fallback is the caller's concern
// (internal/fallback).
type Adapter interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string
	// DefaultModel returns the model used when Request.Model is empty.
	DefaultModel() string
	// Invoke sends a single request to the provider, enforcing timeout as
	// the context deadline. Timeouts, transport failures and non-2xx
	// responses come back as *gateway.ProviderErr; other failures (e.g.
	// encoding or decoding) are returned unwrapped, and the fallback
	// executor classifies them as a generic provider error.
	Invoke(ctx context.Context, req Request) (Response, error)
}

// Registry maps provider names to Adapter instances.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under the given name, overwriting any prior one.
func (r *Registry) Register(name string, a Adapter) {
	r.mu.Lock()
	r.adapters[name] = a
	r.mu.Unlock()
}

// Get returns the adapter registered under name, or an error if not found.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	a, ok := r.adapters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %q not registered", name)
	}
	return a, nil
}

// List returns a sorted slice of all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := slices.Collect(func(yield func(string) bool) {
		for name := range r.adapters {
			if !yield(name) {
				return
			}
		}
	})
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}
