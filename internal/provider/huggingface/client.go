// Package huggingface implements the provider.Adapter contract for the
// Hugging Face text-generation Inference API, translating the chat-message
// array into a single flattened prompt and estimating tokens locally since
// the API reports none.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/dnscache"
	"github.com/tidwall/gjson"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/provider"
	"github.com/corvid-systems/llmgate/internal/tokencount"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "meta-llama/Llama-3.1-8B-Instruct"
	providerName   = "huggingface"
)

// Client is a Hugging Face Inference API adapter implementing provider.Adapter.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// New creates a Hugging Face Client. If baseURL is empty it defaults to the
// public Inference API.
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

type inferenceRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters inferenceParamters `json:"parameters,omitempty"`
}

type inferenceParamters struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxNewToken *int     `json:"max_new_tokens,omitempty"`
	ReturnText  bool     `json:"return_full_text"`
}

// Invoke flattens req.Messages into a single prompt, sends it to the
// model's inference endpoint, and estimates tokens locally since the API
// does not report usage.
func (c *Client) Invoke(ctx context.Context, req provider.Request) (provider.Response, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	prompt := flattenPrompt(req.Messages)

	body, err := json.Marshal(inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParamters{
			Temperature: req.Temperature,
			MaxNewToken: req.MaxTokens,
			ReturnText:  false,
		},
	})
	if err != nil {
		return provider.Response{}, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	url := c.baseURL + "/" + model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return provider.Response{}, fmt.Errorf("huggingface: create request: %w", err)
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

	rawBody := new(bytes.Buffer)
	if _, err := rawBody.ReadFrom(resp.Body); err != nil {
		return provider.Response{}, fmt.Errorf("huggingface: read response: %w", err)
	}

	text, err := extractGeneratedText(rawBody.Bytes())
	if err != nil {
		return provider.Response{}, fmt.Errorf("huggingface: %w", err)
	}

	tokensIn := tokencount.EstimateText(prompt)
	tokensOut := tokencount.EstimateText(text)

	return provider.Response{
		Model: model,
		Choices: []gateway.Choice{
			{Index: 0, Message: gateway.Message{Role: "assistant", Content: text}, FinishReason: "stop"},
		},
		TokensIn:        tokensIn,
		TokensOut:       tokensOut,
		TokensEstimated: true,
		RawLatencyMs:    latency,
	}, nil
}

// flattenPrompt renders a chat message array into a single plain-text
// prompt suitable for a raw text-generation endpoint.
func flattenPrompt(messages []gateway.Message) string {
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant: ")
	return b.String()
}

// extractGeneratedText pulls generated_text out of the Inference API's
// response, which is an array of objects for text-generation models.
func extractGeneratedText(raw []byte) (string, error) {
	result := gjson.ParseBytes(raw)
	if result.IsArray() {
		arr := result.Array()
		if len(arr) == 0 {
			return "", fmt.Errorf("empty response array")
		}
		text := arr[0].Get("generated_text")
		if !text.Exists() {
			return "", fmt.Errorf("missing generated_text field")
		}
		return text.String(), nil
	}
	text := result.Get("generated_text")
	if !text.Exists() {
		return "", fmt.Errorf("missing generated_text field")
	}
	return text.String(), nil
}
