package server

import "net/http"

type modelEntry struct {
	Provider     string `json:"provider"`
	DefaultModel string `json:"default_model"`
}

// handleListModels lists the default model for every registered provider.
// This is a static capability listing, not a usage-analytics endpoint.
func (s *server) handleListModels(w http.ResponseWriter, r *http.Request) {
	names := s.deps.Providers.List()
	models := make([]modelEntry, 0, len(names))
	for _, name := range names {
		adapter, err := s.deps.Providers.Get(name)
		if err != nil {
			continue
		}
		models = append(models, modelEntry{Provider: name, DefaultModel: adapter.DefaultModel()})
	}
	writeJSON(w, http.StatusOK, struct {
		Data []modelEntry `json:"data"`
	}{Data: models})
}
