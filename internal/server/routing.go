package server

import (
	"net/http"
	"strconv"

	"github.com/corvid-systems/llmgate/internal/router"
)

type routingPreviewResponse struct {
	SelectedProvider string   `json:"selected_provider"`
	ProviderName     string   `json:"provider_name"`
	Reason           string   `json:"reason"`
	FallbackChain    []string `json:"fallback_chain"`
}

// handleRoutingPreview exposes the router's decision for a hint tuple without
// driving any provider call, letting callers inspect routing behavior before
// sending a real chat completion request. It requires no authentication.
func (s *server) handleRoutingPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latencySensitive, _ := strconv.ParseBool(q.Get("latency_sensitive"))

	decision := router.Route(router.Hints{
		Task:             q.Get("task"),
		Budget:           q.Get("budget"),
		LatencySensitive: latencySensitive,
	})
	chain := router.Available(decision.Chain, s.deps.Providers.List())

	var providerName string
	if adapter, err := s.deps.Providers.Get(decision.Primary); err == nil {
		providerName = adapter.DefaultModel()
	}

	writeJSON(w, http.StatusOK, routingPreviewResponse{
		SelectedProvider: decision.Primary,
		ProviderName:     providerName,
		Reason:           decision.Reason,
		FallbackChain:    chain,
	})
}
