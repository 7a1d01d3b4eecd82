package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingestion server's Prometheus instruments. Each server
// carries its own registry so tests can run servers side by side without
// duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested    *prometheus.CounterVec
	IngestRejected    prometheus.Counter
	RecomputeDuration prometheus.Histogram
	SSEClients        prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
}

// NewMetrics creates and registers the server metrics.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.EventsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baden",
		Name:      "events_ingested_total",
		Help:      "Activity events accepted by POST /api/events",
	}, []string{"type"})
	m.IngestRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "baden",
		Name:      "events_rejected_total",
		Help:      "Activity events rejected for missing required fields or bad JSON",
	})
	m.RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "baden",
		Name:      "layout_recompute_seconds",
		Help:      "Time spent rebuilding the timeline layout",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	m.SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "baden",
		Name:      "sse_clients",
		Help:      "Connected event-stream clients",
	})
	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "baden",
		Name:      "http_requests_total",
		Help:      "API requests by route and status",
	}, []string{"route", "status"})

	m.registry.MustRegister(
		m.EventsIngested,
		m.IngestRejected,
		m.RecomputeDuration,
		m.SSEClients,
		m.HTTPRequests,
	)
	return m
}

// Handler exposes the registry for GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
