// Package fallback drives a sequential attempt chain across providers,
// consulting a circuit breaker before each attempt and recording outcomes
// for metrics and logging.
package fallback

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/circuitbreaker"
	"github.com/corvid-systems/llmgate/internal/provider"
)

const interAttemptDelay = 500 * time.Millisecond

// Attempt is the outcome of invoking one provider in the chain.
type Attempt struct {
	Provider  string
	Err       error
	LatencyMs int64
}

// Result is the final outcome of driving a chain to completion.
type Result struct {
	Response     provider.Response
	Provider     string // provider that produced Response
	Index        int    // position of the winning provider in the chain
	FallbackUsed bool
	Attempts     []Attempt
	Err          error // set only when every provider in the chain failed
}

// Observer receives callbacks for metrics and logging as the executor
// drives the chain. All methods may be nil-safe no-ops via NopObserver.
// ctx carries the request's identity, so implementations can label series
// per API key without threading that value through the Executor itself.
type Observer interface {
	OnAttemptFailure(ctx context.Context, provider string, err error)
	OnFallback(ctx context.Context, fromProvider, toProvider string)
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) OnAttemptFailure(context.Context, string, error) {}
func (NopObserver) OnFallback(context.Context, string, string)      {}

// Executor drives chat completion requests through an ordered provider
// chain, retrying the next provider on classified failures.
type Executor struct {
	registry  *provider.Registry
	breakers  *circuitbreaker.Registry
	timeout   time.Duration
	retryEach bool
	observer  Observer
}

// Options configures an Executor.
type Options struct {
	PerAttemptTimeout time.Duration
	RetryPerAttempt   bool // compose go-retry around each adapter call
	Observer          Observer
}

// New creates an Executor.
func New(registry *provider.Registry, breakers *circuitbreaker.Registry, opts Options) *Executor {
	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	return &Executor{
		registry:  registry,
		breakers:  breakers,
		timeout:   opts.PerAttemptTimeout,
		retryEach: opts.RetryPerAttempt,
		observer:  obs,
	}
}

// Run drives chain sequentially: TRYING(0) -> TRYING(1) -> ... -> DONE or
// EXHAUSTED. chain must be non-empty.
func (e *Executor) Run(ctx context.Context, chain []string, req provider.Request) Result {
	var attempts []Attempt
	var lastErr error

	for i, name := range chain {
		adapter, err := e.registry.Get(name)
		if err != nil {
			lastErr = err
			attempts = append(attempts, Attempt{Provider: name, Err: err})
			continue
		}

		breaker := e.breakers.GetOrCreate(name)
		if !breaker.Allow() {
			err := &gateway.ProviderErr{Provider: name, Kind: gateway.ErrProviderError, Detail: "circuit open"}
			lastErr = err
			attempts = append(attempts, Attempt{Provider: name, Err: err})
			e.observer.OnAttemptFailure(ctx, name, err)
			if i+1 < len(chain) {
				sleep(ctx, interAttemptDelay)
				continue
			}
			break
		}

		start := time.Now()
		resp, invokeErr := e.invoke(ctx, adapter, req)
		latency := time.Since(start).Milliseconds()

		if invokeErr == nil {
			breaker.RecordSuccess()
			attempts = append(attempts, Attempt{Provider: name, LatencyMs: latency})
			if i > 0 {
				e.observer.OnFallback(ctx, chain[0], name)
			}
			return Result{
				Response:     resp,
				Provider:     name,
				Index:        i,
				FallbackUsed: i > 0,
				Attempts:     attempts,
			}
		}

		classified := classify(name, invokeErr)
		weight := circuitbreaker.ClassifyError(classified)
		if pe := classified.(*gateway.ProviderErr); pe.StatusCode == 0 {
			// No HTTP status to classify: weigh timeouts and transport
			// failures the way ClassifyError weighs the underlying error.
			if errors.Is(pe.Kind, gateway.ErrProviderTimeout) {
				weight = circuitbreaker.ClassifyError(context.DeadlineExceeded)
			} else {
				weight = circuitbreaker.ClassifyError(pe.Kind)
			}
		}
		breaker.RecordError(weight)
		attempts = append(attempts, Attempt{Provider: name, Err: classified, LatencyMs: latency})
		e.observer.OnAttemptFailure(ctx, name, classified)
		lastErr = classified

		if i+1 < len(chain) {
			sleep(ctx, interAttemptDelay)
		}
	}

	if lastErr == nil {
		lastErr = gateway.ErrProvidersExhausted
	}
	return Result{Attempts: attempts, Err: errors.Join(gateway.ErrProvidersExhausted, lastErr)}
}

// invoke calls the adapter once, optionally wrapped in a retry-with-backoff
// helper, within a context bounded by the per-attempt timeout.
func (e *Executor) invoke(ctx context.Context, adapter provider.Adapter, req provider.Request) (provider.Response, error) {
	attemptCtx := ctx
	var cancel context.CancelFunc
	if e.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if !e.retryEach {
		return adapter.Invoke(attemptCtx, req)
	}

	backoff, err := retry.NewExponential(1 * time.Second)
	if err != nil {
		return provider.Response{}, err
	}
	backoff = retry.WithMaxRetries(2, backoff) // 3 total attempts
	backoff = retry.WithCappedDuration(10*time.Second, backoff)

	var resp provider.Response
	err = retry.Do(attemptCtx, backoff, func(ctx context.Context) error {
		r, err := adapter.Invoke(ctx, req)
		if err != nil {
			var pe *gateway.ProviderErr
			if errors.As(err, &pe) && errors.Is(pe.Kind, gateway.ErrProviderError) {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

// classify wraps any non-*gateway.ProviderErr error (e.g. context
// cancellation reaching here unexpectedly) as a generic ProviderError.
func classify(name string, err error) error {
	var pe *gateway.ProviderErr
	if errors.As(err, &pe) {
		return pe
	}
	return &gateway.ProviderErr{Provider: name, Kind: gateway.ErrProviderError, Detail: err.Error()}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
