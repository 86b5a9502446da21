package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/provider"
)

func TestInvokeArrayResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"generated_text":"hello there"}]`))
	}))
	defer srv.Close()

	c := New("k", srv.URL, nil)
	resp, err := c.Invoke(context.Background(), provider.Request{
		Messages: []gateway.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !resp.TokensEstimated {
		t.Error("TokensEstimated should be true")
	}
	if resp.TokensIn < 1 || resp.TokensOut < 1 {
		t.Errorf("tokens = %d/%d, want >= 1 each", resp.TokensIn, resp.TokensOut)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "hello there" {
		t.Errorf("choices = %+v", resp.Choices)
	}
}

func TestInvokeObjectResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text":"single object form"}`))
	}))
	defer srv.Close()

	c := New("k", srv.URL, nil)
	resp, err := c.Invoke(context.Background(), provider.Request{
		Messages: []gateway.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Choices[0].Message.Content != "single object form" {
		t.Errorf("content = %q", resp.Choices[0].Message.Content)
	}
}

func TestInvokeMalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"error":"model loading"}]`))
	}))
	defer srv.Close()

	c := New("k", srv.URL, nil)
	_, err := c.Invoke(context.Background(), provider.Request{
		Messages: []gateway.Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for missing generated_text")
	}
}

func TestFlattenPrompt(t *testing.T) {
	t.Parallel()

	got := flattenPrompt([]gateway.Message{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
	})
	want := "system: be terse\nuser: hi\nassistant: "
	if got != want {
		t.Errorf("flattenPrompt() = %q, want %q", got, want)
	}
}
