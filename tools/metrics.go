package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	toolExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Total tool executions by name and outcome.",
		},
		[]string{"tool", "outcome"},
	)
	toolExecutionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_execution_duration_seconds",
			Help:    "Tool execution duration in seconds.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		},
		[]string{"tool"},
	)
)

func init() {
	prometheus.MustRegister(
		toolExecutionsTotal,
		toolExecutionDurationSeconds,
	)
}

func observeExecution(tool, outcome string, duration time.Duration) {
	toolExecutionsTotal.WithLabelValues(tool, outcome).Inc()
	toolExecutionDurationSeconds.WithLabelValues(tool).Observe(duration.Seconds())
}
