package server

import (
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "polish"

// Metrics holds the server's Prometheus metrics. Each Server registers its
// own set, so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts requests by route and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration measures handler latency by route.
	RequestDuration *prometheus.HistogramVec
	// IssuesTotal counts issues reported by /v1/check, by type.
	IssuesTotal *prometheus.CounterVec
	// AppliedTotal counts applied suggestions.
	AppliedTotal prometheus.Counter
}

// NewMetrics creates and registers the metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		IssuesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "issues_total",
			Help:      "Issues reported by type.",
		}, []string{"type"}),
		AppliedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "suggestions_applied_total",
			Help:      "Suggestions applied to text.",
		}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveIssues counts issues by type.
func (m *Metrics) ObserveIssues(issues []issue.Issue) {
	for t, n := range issue.CountByType(issues) {
		m.IssuesTotal.WithLabelValues(string(t)).Add(float64(n))
	}
}

// ObserveApplied counts applied suggestions.
func (m *Metrics) ObserveApplied(n int) {
	if n > 0 {
		m.AppliedTotal.Add(float64(n))
	}
}
