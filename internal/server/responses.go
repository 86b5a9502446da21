package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// jsonCT is a pre-allocated header value slice. Direct map assignment
// (w.Header()["Content-Type"] = jsonCT) avoids the []string{v} alloc
// Header.Set would otherwise incur on every response.
var jsonCT = []string{"application/json"}

type apiError struct {
	Detail string `json:"detail"`
}

func errorResponse(msg string) apiError {
	return apiError{Detail: msg}
}

// errorStatus maps a gateway sentinel error to its HTTP status code.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, gateway.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, gateway.ErrRateLimitedLocal):
		return http.StatusTooManyRequests
	case errors.Is(err, gateway.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrProvidersExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
		return
	}
	w.Header()["Content-Type"] = jsonCT
	w.WriteHeader(status)
	w.Write(data)
}
