package telemetry

import (
	"context"

	gateway "github.com/corvid-systems/llmgate/internal"
)

// FallbackObserver records per-attempt provider failures against the
// gateway's Prometheus series. It satisfies fallback.Observer structurally,
// so this package never imports internal/fallback.
type FallbackObserver struct {
	Metrics *Metrics
}

// OnAttemptFailure increments errors_total once per failed provider attempt,
// labeled with the provider that actually failed rather than the chain's
// primary choice.
func (o *FallbackObserver) OnAttemptFailure(ctx context.Context, provider string, err error) {
	if o.Metrics == nil {
		return
	}
	o.Metrics.ErrorsTotal.WithLabelValues(apiKeyID(ctx), provider, gateway.ErrorType(err)).Inc()
}

// OnFallback is a no-op here: fallbacks_total is recorded once per request
// in the handler, which already has the winning provider and full context.
func (o *FallbackObserver) OnFallback(ctx context.Context, fromProvider, toProvider string) {}

func apiKeyID(ctx context.Context) string {
	if identity := gateway.IdentityFromContext(ctx); identity != nil {
		return identity.KeyID
	}
	return ""
}
