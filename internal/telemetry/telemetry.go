// Package telemetry provides Prometheus collectors for the profiling engine.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyBuckets covers on-device ingest batches, from a handful of URLs to
// tens of thousands.
var latencyBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}

// Metrics collects engine counters on a private registry, exposed only
// through the local server. A nil *Metrics is valid and records nothing, so
// callers never nil-check before recording.
type Metrics struct {
	registry *prometheus.Registry

	urlsClassified *prometheus.CounterVec
	ingests        *prometheus.CounterVec
	ingestLatency  prometheus.Histogram
	interrupts     prometheus.Counter
	storeErrors    prometheus.Counter
}

// New creates a Metrics set registered on its own registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.urlsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "konomi",
			Subsystem: "relevancy",
			Name:      "urls_classified_total",
			Help:      "URLs seen by the classifier, by outcome",
		},
		[]string{"outcome"},
	)

	m.ingests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "konomi",
			Subsystem: "relevancy",
			Name:      "ingests_total",
			Help:      "Ingest operations, by status",
		},
		[]string{"status"},
	)

	m.ingestLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "konomi",
			Subsystem: "relevancy",
			Name:      "ingest_latency_seconds",
			Help:      "Ingest latency in seconds",
			Buckets:   latencyBuckets,
		},
	)

	m.interrupts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "konomi",
			Subsystem: "relevancy",
			Name:      "interrupts_total",
			Help:      "Interrupt requests",
		},
	)

	m.storeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "konomi",
			Subsystem: "relevancy",
			Name:      "store_errors_total",
			Help:      "Operations that surfaced an unexpected error",
		},
	)

	m.registry.MustRegister(
		m.urlsClassified,
		m.ingests,
		m.ingestLatency,
		m.interrupts,
		m.storeErrors,
	)

	return m
}

// RecordClassification counts one batch's classified and skipped URLs.
func (m *Metrics) RecordClassification(classified, skipped int) {
	if m == nil {
		return
	}
	m.urlsClassified.WithLabelValues("classified").Add(float64(classified))
	m.urlsClassified.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordIngest counts one ingest operation and its latency.
func (m *Metrics) RecordIngest(latency time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ingests.WithLabelValues(status).Inc()
	m.ingestLatency.Observe(latency.Seconds())
}

// RecordInterrupt counts one interrupt request.
func (m *Metrics) RecordInterrupt() {
	if m == nil {
		return
	}
	m.interrupts.Inc()
}

// RecordStoreError counts one operation that surfaced an error.
func (m *Metrics) RecordStoreError() {
	if m == nil {
		return
	}
	m.storeErrors.Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
