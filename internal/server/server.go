// Package server implements the HTTP transport layer for the gateway.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go.opentelemetry.io/otel/trace"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/circuitbreaker"
	"github.com/corvid-systems/llmgate/internal/fallback"
	"github.com/corvid-systems/llmgate/internal/provider"
	"github.com/corvid-systems/llmgate/internal/ratelimit"
	"github.com/corvid-systems/llmgate/internal/recorder"
	"github.com/corvid-systems/llmgate/internal/telemetry"
)

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Auth           gateway.Authenticator
	Providers      *provider.Registry
	Breakers       *circuitbreaker.Registry
	Executor       *fallback.Executor
	Recorder       *recorder.Recorder
	Metrics        *telemetry.Metrics // nil = no Prometheus metrics recorded
	MetricsHandler http.Handler       // nil = no /metrics endpoint
	Tracer         trace.Tracer       // nil = no distributed tracing
	RateLimiter    *ratelimit.Registry
	Log            *slog.Logger
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	s := &server{deps: deps}

	r := chi.NewRouter()

	r.Use(s.securityHeaders)
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)

	r.Get("/health", s.handleHealth)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get("/v1/routing/preview", s.handleRoutingPreview)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.rateLimit)
		r.Post("/v1/chat/completions", s.handleChatCompletion)
		r.Get("/v1/models", s.handleListModels)
	})

	return r
}

type server struct {
	deps Deps
}
