// Package openai implements the provider.Adapter contract for the OpenAI
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/dnscache"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/provider"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	providerName   = "openai"
)

// Client is an OpenAI adapter implementing provider.Adapter.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// New creates an OpenAI Client. If baseURL is empty it defaults to the
// public OpenAI API; resolver, if non-nil, wraps the transport's
// DialContext with cached DNS lookups.
func New(apiKey, baseURL string, resolver *dnscache.Resolver) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   defaultModel,
		http:    &http.Client{Transport: provider.NewTransport(resolver, true)},
	}
}

func (c *Client) Name() string         { return providerName }
func (c *Client) DefaultModel() string { return c.model }

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []gateway.Message `json:"messages"`
	Temperature *float64          `json:"temperature,omitempty"`
	MaxTokens   *int              `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	ID      string           `json:"id"`
	Model   string           `json:"model"`
	Choices []gateway.Choice `json:"choices"`
	Usage   gateway.Usage    `json:"usage"`
}

// Invoke sends a single non-streaming chat completion request.
func (c *Client) Invoke(ctx context.Context, req provider.Request) (provider.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return provider.Response{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return provider.Response{}, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return provider.Response{}, provider.WrapTransportError(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.Response{}, provider.ParseAPIError(providerName, resp)
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return provider.Response{}, fmt.Errorf("openai: decode response: %w", err)
	}

	return provider.Response{
		ID:           out.ID,
		Model:        out.Model,
		Choices:      out.Choices,
		TokensIn:     out.Usage.PromptTokens,
		TokensOut:    out.Usage.CompletionTokens,
		RawLatencyMs: latency,
	}, nil
}
