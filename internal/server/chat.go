package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/logging"
	"github.com/corvid-systems/llmgate/internal/pricing"
	"github.com/corvid-systems/llmgate/internal/provider"
	"github.com/corvid-systems/llmgate/internal/recorder"
	"github.com/corvid-systems/llmgate/internal/router"
)

const maxChatBodyBytes = 1 << 20 // 1 MiB

var validRoles = map[string]bool{"system": true, "user": true, "assistant": true}

// handleChatCompletion implements the request handler's eight-step sequence:
// authenticate and rate-limit run as middleware ahead of this handler; this
// body picks up from body validation through response or error.
func (s *server) handleChatCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := gateway.RequestIDFromContext(ctx)
	identity := gateway.IdentityFromContext(ctx)
	var apiKeyID string
	if identity != nil {
		apiKeyID = identity.KeyID
	}

	var req gateway.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}
	if msg, ok := validateChatRequest(&req); !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse(msg))
		return
	}

	decision := router.Route(router.Hints{
		Task:             req.Task,
		Budget:           req.Budget,
		LatencySensitive: req.LatencySensitive,
	})
	chain := router.Available(decision.Chain, s.deps.Providers.List())
	if len(chain) == 0 {
		writeJSON(w, http.StatusBadGateway, errorResponse("LLM provider error: no providers available"))
		return
	}

	preq := provider.Request{
		Messages:    req.Messages,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var span trace.Span
	if s.deps.Tracer != nil {
		ctx, span = s.deps.Tracer.Start(ctx, "fallback.Run")
	}
	start := time.Now()
	result := s.deps.Executor.Run(ctx, chain, preq)
	latencyMs := time.Since(start).Milliseconds()
	if span != nil {
		span.End()
	}

	for _, a := range result.Attempts {
		if a.Err != nil && s.deps.Log != nil {
			logging.FallbackAttempt(ctx, s.deps.Log, apiKeyID, a.Provider, a.LatencyMs, a.Err)
		}
	}

	if result.Err != nil {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RequestsTotal.WithLabelValues(apiKeyID, decision.Primary, "failure").Inc()
		}
		writeJSON(w, errorStatus(result.Err), errorResponse("LLM provider error: "+result.Err.Error()))
		return
	}

	if s.deps.Log != nil {
		logging.FallbackAttempt(ctx, s.deps.Log, apiKeyID, result.Provider, latencyMs, nil)
	}
	if result.FallbackUsed && s.deps.Metrics != nil {
		s.deps.Metrics.FallbacksTotal.WithLabelValues(apiKeyID, chain[0], result.Provider).Inc()
	}

	resp := result.Response
	cost := pricing.Cost(result.Provider, resp.Model, resp.TokensIn, resp.TokensOut)
	costStr := cost.String()
	costF, _ := cost.Float64()

	if s.deps.Recorder != nil {
		err := s.deps.Recorder.Record(ctx, recorder.Input{
			APIKeyID:  apiKeyID,
			RequestID: requestID,
			Provider:  result.Provider,
			Model:     resp.Model,
			TokensIn:  resp.TokensIn,
			TokensOut: resp.TokensOut,
			CostUSD:   costStr,
			LatencyMs: latencyMs,
		})
		if err != nil && s.deps.Log != nil {
			logging.PersistenceFailure(ctx, s.deps.Log, apiKeyID, err)
		}
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RequestsTotal.WithLabelValues(apiKeyID, result.Provider, "success").Inc()
		s.deps.Metrics.CostTotal.WithLabelValues(apiKeyID, result.Provider, resp.Model).Add(costF)
		s.deps.Metrics.LatencySeconds.WithLabelValues(apiKeyID, result.Provider).Observe(float64(latencyMs) / 1000)
	}
	if s.deps.Log != nil {
		logging.Completion(ctx, s.deps.Log, apiKeyID, result.Provider, latencyMs, costF, result.FallbackUsed)
	}

	writeJSON(w, http.StatusOK, gateway.ChatResponse{
		ID:      requestID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   resp.Model,
		Choices: resp.Choices,
		Usage: gateway.Usage{
			PromptTokens:     resp.TokensIn,
			CompletionTokens: resp.TokensOut,
			TotalTokens:      resp.TokensIn + resp.TokensOut,
		},
		Provider: result.Provider,
		CostUSD:  costStr,
	})
}

// validateChatRequest checks step 4 of the request handler: messages must be
// non-empty, roles constrained, content non-empty, sampling params in range.
func validateChatRequest(req *gateway.ChatRequest) (string, bool) {
	if len(req.Messages) == 0 {
		return "messages must not be empty", false
	}
	for _, m := range req.Messages {
		if !validRoles[m.Role] {
			return "invalid message role", false
		}
		if m.Content == "" {
			return "message content must not be empty", false
		}
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return "temperature out of range", false
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return "max_tokens out of range", false
	}
	return "", true
}
