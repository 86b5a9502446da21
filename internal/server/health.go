package server

import "net/http"

var healthBody = []byte(`{"status":"ok"}`)

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(http.StatusOK)
	w.Write(healthBody)
}
