// Package telemetry provides observability primitives for the gateway.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's external-contract series. Names and labels are
// frozen; changing either breaks dashboards and alerts built against them.
type Metrics struct {
	RequestsTotal  *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	FallbacksTotal *prometheus.CounterVec
	CostTotal      *prometheus.CounterVec
	LatencySeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_gateway",
			Name:      "requests_total",
			Help:      "Total chat completion requests by outcome.",
		}, []string{"api_key_id", "provider", "status"}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_gateway",
			Name:      "errors_total",
			Help:      "Total classified provider/gateway errors.",
		}, []string{"api_key_id", "provider", "error_type"}),

		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_gateway",
			Name:      "fallbacks_total",
			Help:      "Total fallback transitions between providers.",
		}, []string{"api_key_id", "from_provider", "to_provider"}),

		CostTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_gateway",
			Name:      "cost_total",
			Help:      "Total cost in USD attributed to completed requests.",
		}, []string{"api_key_id", "provider", "model"}),

		LatencySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llm_gateway",
			Name:      "latency_seconds",
			Help:      "Handler-level latency of the fallback executor run.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"api_key_id", "provider"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.ErrorsTotal,
		m.FallbacksTotal,
		m.CostTotal,
		m.LatencySeconds,
	)

	return m
}
