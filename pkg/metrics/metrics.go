// Package metrics provides Prometheus metrics for the rater API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gtfs_rt_rater"

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Agency refresh outcomes.
const (
	RefreshUpdated = "updated"
	RefreshEmpty   = "empty"
	RefreshFailed  = "failed"
	RefreshSkipped = "skipped"
)

// Manager owns a private registry and every collector the service exports.
// A nil *Manager is valid and records nothing.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	documentReads     *prometheus.CounterVec
	agencyCache       *prometheus.CounterVec
	agencyRefreshes   *prometheus.CounterVec
	agencyNames       prometheus.Gauge
	mobilityDBPages   prometheus.Counter
	mobilityDBFailure *prometheus.CounterVec
	backendSelected   *prometheus.GaugeVec
}

// NewManager registers all collectors on a fresh registry.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Manager{
		registry: registry,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		documentReads: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_reads_total",
			Help:      "Aggregate document reads by backend and result",
		}, []string{"backend", "result"}),
		agencyCache: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agency_cache_lookups_total",
			Help:      "Agency name cache lookups by result",
		}, []string{"result"}),
		agencyRefreshes: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agency_refresh_total",
			Help:      "Agency name refresh runs by trigger and outcome",
		}, []string{"trigger", "outcome"}),
		agencyNames: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agency_names",
			Help:      "Number of agency names written by the last successful refresh",
		}),
		mobilityDBPages: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mobilitydb_pages_total",
			Help:      "Feed listing pages fetched from MobilityDatabase",
		}),
		mobilityDBFailure: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mobilitydb_failures_total",
			Help:      "MobilityDatabase call failures by stage",
		}, []string{"stage"}),
		backendSelected: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_selected",
			Help:      "1 for the document backend chosen by this process",
		}, []string{"backend"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest counts one served request and its latency.
func (m *Manager) RecordHTTPRequest(route, method, statusCode string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(seconds)
}

// RecordDocumentRead counts a document read; result is ok, not_found or error.
func (m *Manager) RecordDocumentRead(backend, result string) {
	if m == nil {
		return
	}
	m.documentReads.WithLabelValues(backend, result).Inc()
}

// RecordAgencyCache counts an agency name cache lookup.
func (m *Manager) RecordAgencyCache(result string) {
	if m == nil {
		return
	}
	m.agencyCache.WithLabelValues(result).Inc()
}

// RecordAgencyRefresh counts a refresh run; names is only used on RefreshUpdated.
func (m *Manager) RecordAgencyRefresh(trigger, outcome string, names int) {
	if m == nil {
		return
	}
	m.agencyRefreshes.WithLabelValues(trigger, outcome).Inc()
	if outcome == RefreshUpdated {
		m.agencyNames.Set(float64(names))
	}
}

// RecordMobilityDBPage counts one fetched listing page.
func (m *Manager) RecordMobilityDBPage() {
	if m == nil {
		return
	}
	m.mobilityDBPages.Inc()
}

// RecordMobilityDBFailure counts a failed call; stage is token or page.
func (m *Manager) RecordMobilityDBFailure(stage string) {
	if m == nil {
		return
	}
	m.mobilityDBFailure.WithLabelValues(stage).Inc()
}

// SetBackend marks the selected backend.
func (m *Manager) SetBackend(backend string) {
	if m == nil {
		return
	}
	m.backendSelected.Reset()
	m.backendSelected.WithLabelValues(backend).Set(1)
}
