// Package metrics exposes Prometheus instruments for the PRD service.
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

const namespace = "redspec"

// Metrics holds every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	generationRequests  *prometheus.CounterVec
	generationDuration  *prometheus.HistogramVec
	sectionsParsed      prometheus.Counter
	questionsParsed     *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	pendingFlushes      prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New creates the instruments on a fresh registry with Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		generationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Generation requests by provider and outcome (ok, timeout, unavailable, failed).",
		}, []string{"provider", "outcome"}),
		generationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of generation requests.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"provider"}),
		sectionsParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_parsed_total",
			Help:      "PRD sections extracted from generated text.",
		}),
		questionsParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_parsed_total",
			Help:      "Questions extracted from generated text, by whether options were found.",
		}, []string{"options"}),
		persistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Failed writes to the document store by operation.",
		}, []string{"operation"}),
		pendingFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pending_flushes_total",
			Help:      "Held turns written on a later flush.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveGeneration records one generation attempt
func (m *Metrics) ObserveGeneration(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generationRequests.WithLabelValues(provider, outcome).Inc()
	m.generationDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveParse records what one response contributed
func (m *Metrics) ObserveParse(sections int, hasQuestion, hasOptions bool) {
	if m == nil {
		return
	}
	m.sectionsParsed.Add(float64(sections))
	if hasQuestion {
		label := "without"
		if hasOptions {
			label = "with"
		}
		m.questionsParsed.WithLabelValues(label).Inc()
	}
}

// PersistenceFailed records a failed write
func (m *Metrics) PersistenceFailed(operation string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(operation).Inc()
}

// PendingFlushed records held turns that were finally written
func (m *Metrics) PendingFlushed(n int) {
	if m == nil {
		return
	}
	m.pendingFlushes.Add(float64(n))
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
