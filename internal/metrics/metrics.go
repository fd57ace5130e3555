// Package metrics provides Prometheus metrics for the pack service
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Pack lifecycle metrics
	PackTransitionsTotal  *prometheus.CounterVec
	PackExportsTotal      *prometheus.CounterVec
	VersionConflictsTotal prometheus.Counter
}

// NewMetrics creates metrics on a dedicated registry. Each call is independent,
// so tests can build as many as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolgle_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schoolgle_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "schoolgle_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.PackTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolgle_pack_transitions_total",
			Help: "Total number of committed pack lifecycle transitions",
		},
		[]string{"action"},
	)

	m.PackExportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schoolgle_pack_exports_total",
			Help: "Total number of pack export requests",
		},
		[]string{"format"},
	)

	m.VersionConflictsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "schoolgle_pack_version_conflicts_total",
			Help: "Total number of version allocation conflicts",
		},
	)

	return m
}

// Handler serves the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordTransition counts a committed lifecycle transition
func (m *Metrics) RecordTransition(action string) {
	m.PackTransitionsTotal.WithLabelValues(action).Inc()
}

// RecordExport counts an export request by format
func (m *Metrics) RecordExport(format string) {
	m.PackExportsTotal.WithLabelValues(format).Inc()
}

// RecordVersionConflict counts a lost version race
func (m *Metrics) RecordVersionConflict() {
	m.VersionConflictsTotal.Inc()
}
