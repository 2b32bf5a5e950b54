package openai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total LLM transport requests by provider, kind, and outcome.",
		},
		[]string{"provider", "kind", "outcome"},
	)
	llmRequestLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_latency_seconds",
			Help:    "LLM transport request latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "kind"},
	)
)

func init() {
	prometheus.MustRegister(
		llmRequestsTotal,
		llmRequestLatencySeconds,
	)
}

func observeRequest(provider, kind string, latency time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	llmRequestsTotal.WithLabelValues(provider, kind, outcome).Inc()
	llmRequestLatencySeconds.WithLabelValues(provider, kind).Observe(latency.Seconds())
}
