package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	gateway "github.com/corvid-systems/llmgate/internal"
)

type fakeAdapter struct {
	name, model string
}

func (f *fakeAdapter) Name() string         { return f.name }
func (f *fakeAdapter) DefaultModel() string { return f.model }
func (f *fakeAdapter) Invoke(_ context.Context, _ Request) (Response, error) {
	return Response{}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("openai", &fakeAdapter{name: "openai", model: "gpt-3.5-turbo"})

	got, err := reg.Get("openai")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", got.Name())
	}

	_, err = reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent provider")
	}
}

func TestRegistryList(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("beta", &fakeAdapter{name: "beta"})
	reg.Register("alpha", &fakeAdapter{name: "alpha"})
	reg.Register("gamma", &fakeAdapter{name: "gamma"})

	names := reg.List()
	if len(names) != 3 {
		t.Fatalf("got %d names, want 3", len(names))
	}
	if names[0] != "alpha" || names[1] != "beta" || names[2] != "gamma" {
		t.Errorf("names = %v, want [alpha beta gamma]", names)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("p1", &fakeAdapter{name: "p1", model: "a"})
	reg.Register("p1", &fakeAdapter{name: "p1", model: "b"})

	got, err := reg.Get("p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DefaultModel() != "b" {
		t.Errorf("DefaultModel() = %q, want b (overwritten)", got.DefaultModel())
	}
	if len(reg.List()) != 1 {
		t.Errorf("list len = %d, want 1", len(reg.List()))
	}
}

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	body := `{"error":{"message":"model not found"}}`
	resp := &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader(body)),
	}

	err := ParseAPIError("openai", resp)
	var pe *gateway.ProviderErr
	if !asProviderErr(err, &pe) {
		t.Fatalf("expected *gateway.ProviderErr, got %T", err)
	}
	if pe.HTTPStatus() != http.StatusNotFound {
		t.Errorf("HTTPStatus() = %d, want %d", pe.HTTPStatus(), http.StatusNotFound)
	}
	if !strings.Contains(pe.Error(), "model not found") {
		t.Errorf("Error() = %q, want body content", pe.Error())
	}
}

func TestParseAPIErrorRateLimit(t *testing.T) {
	t.Parallel()

	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(strings.NewReader("rate limited")),
	}
	err := ParseAPIError("openai", resp)
	var pe *gateway.ProviderErr
	if !asProviderErr(err, &pe) {
		t.Fatalf("expected *gateway.ProviderErr, got %T", err)
	}
	if pe.ErrorType() != "ProviderRateLimitError" {
		t.Errorf("ErrorType() = %q, want ProviderRateLimitError", pe.ErrorType())
	}
}

func asProviderErr(err error, target **gateway.ProviderErr) bool {
	pe, ok := err.(*gateway.ProviderErr)
	if !ok {
		return false
	}
	*target = pe
	return true
}
