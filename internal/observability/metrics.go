package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service. Each instance owns
// its registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route pattern and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration observes HTTP request latency by method and route pattern.
	RequestDuration *prometheus.HistogramVec
	// SeedsTotal counts seed runs by result (success, failure).
	SeedsTotal *prometheus.CounterVec
	// SeededRecords is the record count written by the last successful seed.
	SeededRecords prometheus.Gauge
}

// NewMetrics creates and registers all collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SeedsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeds_total",
			Help:      "Total number of catalog seed runs",
		}, []string{"result"}),
		SeededRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seeded_records",
			Help:      "Number of records written by the last successful seed",
		}),
	}
}

// ObserveSeed records the outcome of a seed run.
func (m *Metrics) ObserveSeed(count int, err error) {
	if err != nil {
		m.SeedsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.SeedsTotal.WithLabelValues("success").Inc()
	m.SeededRecords.Set(float64(count))
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
