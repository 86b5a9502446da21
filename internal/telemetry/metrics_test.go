package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)

	if m.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if m.ErrorsTotal == nil {
		t.Error("ErrorsTotal is nil")
	}
	if m.FallbacksTotal == nil {
		t.Error("FallbacksTotal is nil")
	}
	if m.CostTotal == nil {
		t.Error("CostTotal is nil")
	}
	if m.LatencySeconds == nil {
		t.Error("LatencySeconds is nil")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected at least one metric family")
	}
}

func TestNewMetricsIncrement(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	m := NewMetrics(reg)

	m.RequestsTotal.WithLabelValues("key-1", "openai", "success").Inc()
	m.ErrorsTotal.WithLabelValues("key-1", "openai", "ProviderTimeoutError").Inc()
	m.FallbacksTotal.WithLabelValues("key-1", "openai", "deepseek").Inc()
	m.CostTotal.WithLabelValues("key-1", "openai", "gpt-3.5-turbo").Add(0.0042)
	m.LatencySeconds.WithLabelValues("key-1", "openai").Observe(0.7)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather after increment: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	want := []string{
		"llm_gateway_requests_total",
		"llm_gateway_errors_total",
		"llm_gateway_fallbacks_total",
		"llm_gateway_cost_total",
		"llm_gateway_latency_seconds",
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("missing metric %q in gathered families", name)
		}
	}
}

// SetupTracing is not unit-tested because it requires a gRPC connection
// to an OTLP collector, which is integration-test territory.
