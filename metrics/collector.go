// Package metrics provides Prometheus instrumentation for the Quercle
// client and tool layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for tool invocations.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector records per-operation request counters and latencies plus
// per-tool invocation counts.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	toolCallsTotal  *prometheus.CounterVec
}

// NewCollector registers the metric vectors with reg. Pass
// prometheus.DefaultRegisterer in production code and a fresh
// prometheus.NewRegistry() in tests.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of Quercle API requests",
			},
			[]string{"operation", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Quercle API request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
	}
}

// ObserveRequest records one outbound request. A status of 0 means the
// request never produced an HTTP response (transport failure).
func (c *Collector) ObserveRequest(operation string, status int, duration time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	c.requestsTotal.WithLabelValues(operation, label).Inc()
	c.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveToolCall records one tool invocation with its outcome.
func (c *Collector) ObserveToolCall(tool, outcome string) {
	c.toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// ToolCallCounter exposes one tool/outcome counter for test assertions.
func (c *Collector) ToolCallCounter(tool, outcome string) prometheus.Counter {
	return c.toolCallsTotal.WithLabelValues(tool, outcome)
}
