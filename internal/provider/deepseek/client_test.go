package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/provider"
)

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{
			ID:      "cmpl-1",
			Model:   "deepseek-chat",
			Choices: []gateway.Choice{{Index: 0, Message: gateway.Message{Role: "assistant", Content: "ok"}}},
			Usage:   gateway.Usage{PromptTokens: 3, CompletionTokens: 1, TotalTokens: 4},
		})
	}))
	defer srv.Close()

	c := New("k", srv.URL, nil)
	resp, err := c.Invoke(context.Background(), provider.Request{
		Messages: []gateway.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.TokensIn != 3 || resp.TokensOut != 1 {
		t.Errorf("tokens = %d/%d, want 3/1", resp.TokensIn, resp.TokensOut)
	}
}

func TestInvokeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("k", srv.URL, nil)
	_, err := c.Invoke(context.Background(), provider.Request{Messages: []gateway.Message{{Role: "user", Content: "hi"}}})
	pe, ok := err.(*gateway.ProviderErr)
	if !ok {
		t.Fatalf("expected *gateway.ProviderErr, got %T", err)
	}
	if pe.ErrorType() != "ProviderError" {
		t.Errorf("ErrorType() = %q, want ProviderError", pe.ErrorType())
	}
}
