package testutil

import (
	"context"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/provider"
)

// FakeAdapter is a configurable provider.Adapter for testing.
type FakeAdapter struct {
	ProviderName string
	Model        string
	InvokeFn     func(ctx context.Context, req provider.Request) (provider.Response, error)
}

// Name returns the configured provider name.
func (f *FakeAdapter) Name() string { return f.ProviderName }

// DefaultModel returns the configured default model.
func (f *FakeAdapter) DefaultModel() string {
	if f.Model == "" {
		return "fake-model"
	}
	return f.Model
}

// Invoke delegates to InvokeFn or returns a default successful response.
func (f *FakeAdapter) Invoke(ctx context.Context, req provider.Request) (provider.Response, error) {
	if f.InvokeFn != nil {
		return f.InvokeFn(ctx, req)
	}
	model := req.Model
	if model == "" {
		model = f.DefaultModel()
	}
	return provider.Response{
		ID:    "fake-id",
		Model: model,
		Choices: []gateway.Choice{{
			Index:        0,
			Message:      gateway.Message{Role: "assistant", Content: "hello"},
			FinishReason: "stop",
		}},
		TokensIn:  1,
		TokensOut: 1,
	}, nil
}
