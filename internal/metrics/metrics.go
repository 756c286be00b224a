// Package metrics holds the Prometheus collectors for the classification
// service and its gRPC surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Classification outcomes.
const (
	OutcomeAutoApproved   = "auto_approved"
	OutcomeReviewRequired = "review_required"
)

var latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics is a set of collectors registered on their own registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	Classifications      *prometheus.CounterVec
	Confidence           prometheus.Histogram
	ReviewDecisions      *prometheus.CounterVec
	OpenReviews          prometheus.Gauge
	Failures             *prometheus.CounterVec
	GRPCHandledTotal     *prometheus.CounterVec
	GRPCHandlingDuration *prometheus.HistogramVec
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tariffwatch_classifications_total",
				Help: "Classifications completed, by outcome",
			},
			[]string{"outcome"},
		),
		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tariffwatch_classification_confidence",
				Help:    "Distribution of classification confidence",
				Buckets: prometheus.LinearBuckets(0.4, 0.05, 12),
			},
		),
		ReviewDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tariffwatch_review_decisions_total",
				Help: "Review decisions recorded, by decision",
			},
			[]string{"decision"},
		),
		OpenReviews: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tariffwatch_open_reviews",
				Help: "Review tickets awaiting a decision",
			},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tariffwatch_operation_failures_total",
				Help: "Failed service operations, by operation",
			},
			[]string{"operation"},
		),
		GRPCHandledTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grpc_server_handled_total",
				Help: "Total number of RPCs completed on the server",
			},
			[]string{"grpc_method", "grpc_code"},
		),
		GRPCHandlingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "grpc_server_handling_seconds",
				Help:    "Histogram of response latency of gRPC",
				Buckets: latencyBuckets,
			},
			[]string{"grpc_method"},
		),
	}

	m.Registry.MustRegister(
		m.Classifications,
		m.Confidence,
		m.ReviewDecisions,
		m.OpenReviews,
		m.Failures,
		m.GRPCHandledTotal,
		m.GRPCHandlingDuration,
	)
	return m
}

// ObserveClassification records one completed classification.
func (m *Metrics) ObserveClassification(confidence float64, reviewRequired bool) {
	if m == nil {
		return
	}
	outcome := OutcomeAutoApproved
	if reviewRequired {
		outcome = OutcomeReviewRequired
		m.OpenReviews.Inc()
	}
	m.Classifications.WithLabelValues(outcome).Inc()
	m.Confidence.Observe(confidence)
}

// ObserveDecision records one review decision.
func (m *Metrics) ObserveDecision(decision string) {
	if m == nil {
		return
	}
	m.ReviewDecisions.WithLabelValues(decision).Inc()
	m.OpenReviews.Dec()
}

// ObserveFailure counts a failed operation.
func (m *Metrics) ObserveFailure(operation string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(operation).Inc()
}

// SetOpenReviews seeds the open-review gauge, typically from store counts at startup.
func (m *Metrics) SetOpenReviews(n int) {
	if m == nil {
		return
	}
	m.OpenReviews.Set(float64(n))
}

// ObserveRPC records a completed RPC.
func (m *Metrics) ObserveRPC(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.GRPCHandledTotal.WithLabelValues(method, code).Inc()
	m.GRPCHandlingDuration.WithLabelValues(method).Observe(seconds)
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
