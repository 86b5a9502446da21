package provider

import (
	"context"
	"errors"
	"io"
	"net/http"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// ParseAPIError reads a bounded slice of the response body and classifies
// the status code into the taxonomy's fallback-eligible provider errors.
func ParseAPIError(providerName string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &gateway.ProviderErr{
		Provider:   providerName,
		Kind:       classifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Detail:     string(body),
	}
}

// WrapTransportError classifies a transport-level failure (timeout, dial
// error) that never produced an HTTP response.
func WrapTransportError(providerName string, err error) error {
	kind := gateway.ErrProviderError
	if errors.Is(err, context.DeadlineExceeded) {
		kind = gateway.ErrProviderTimeout
	}
	return &gateway.ProviderErr{Provider: providerName, Kind: kind, Detail: err.Error()}
}

func classifyStatus(code int) error {
	if code == http.StatusTooManyRequests {
		return gateway.ErrProviderRateLimit
	}
	return gateway.ErrProviderError
}
