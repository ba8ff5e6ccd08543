// Package metrics provides Prometheus metrics for MIME lookups and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MatthiasKunnen/xdgmime/resolver"
)

// Manager owns the metrics of the process. Every Manager has its own registry so that the
// default Go collectors are not exported.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	lookups             *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// NewManager creates a metrics manager with a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "xdgmime",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.lookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "lookups_total",
		Help:      "Number of MIME type lookups by method and result.",
	}, []string{"method", "result"})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	return m
}

// ObserveLookup implements resolver.Observer.
func (m *Manager) ObserveLookup(method resolver.Method, outcome resolver.Outcome) {
	m.lookups.WithLabelValues(string(method), string(outcome)).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint string, method string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Registry returns the registry holding the metrics of m.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics of m in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ resolver.Observer = (*Manager)(nil)
