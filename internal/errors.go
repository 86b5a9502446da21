package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gateway's error taxonomy, so every caller matches
// with errors.Is against one vocabulary. The HTTP status mapping for them
// lives in the server package (errorStatus).
var (
	ErrAuth               = errors.New("auth error")
	ErrRateLimitedLocal   = errors.New("rate limited")
	ErrValidation         = errors.New("validation error")
	ErrProviderTimeout    = errors.New("provider timeout")
	ErrProviderRateLimit  = errors.New("provider rate limit")
	ErrProviderError      = errors.New("provider error")
	ErrProvidersExhausted = errors.New("providers exhausted")
	ErrPersistence        = errors.New("persistence error")
	ErrNotFound           = errors.New("not found")
)

// ProviderErr wraps an upstream provider failure with enough detail for
// circuit-breaker classification and structured logging, while still
// unwrapping to one of the three fallback-eligible sentinels above.
type ProviderErr struct {
	Provider   string
	Kind       error // one of ErrProviderTimeout, ErrProviderRateLimit, ErrProviderError
	StatusCode int   // 0 when not an HTTP response (e.g. timeout, network error)
	Detail     string
}

func (e *ProviderErr) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Detail)
}

func (e *ProviderErr) Unwrap() error { return e.Kind }

// HTTPStatus satisfies circuitbreaker's httpStatusError interface.
func (e *ProviderErr) HTTPStatus() int { return e.StatusCode }

// ErrorType returns the taxonomy name used in metrics labels and log lines.
func (e *ProviderErr) ErrorType() string {
	switch {
	case errors.Is(e.Kind, ErrProviderTimeout):
		return "ProviderTimeoutError"
	case errors.Is(e.Kind, ErrProviderRateLimit):
		return "ProviderRateLimitError"
	default:
		return "ProviderError"
	}
}

// ErrorType classifies any error from the request pipeline into the
// taxonomy name used in structured log lines and metric labels.
func ErrorType(err error) string {
	var pe *ProviderErr
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return pe.ErrorType()
	case errors.Is(err, ErrAuth):
		return "AuthError"
	case errors.Is(err, ErrRateLimitedLocal):
		return "RateLimitedLocal"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrProvidersExhausted):
		return "ProvidersExhausted"
	case errors.Is(err, ErrPersistence):
		return "PersistenceError"
	default:
		return "ProviderError"
	}
}
