// Package metrics holds the prometheus collectors of the verifier.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for presentation transactions.
type Metrics struct {
	PresentationsInitiated   *prometheus.CounterVec
	RequestObjectsRetrieved  prometheus.Counter
	WalletResponsesSubmitted *prometheus.CounterVec
	WalletResponsesRejected  *prometheus.CounterVec
	PresentationsTimedOut    prometheus.Counter
	TimeoutSweepDuration     prometheus.Histogram
	StoreOperationLatency    *prometheus.HistogramVec
	HTTPRequestDuration      *prometheus.HistogramVec
}

// New registers the collectors with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PresentationsInitiated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_presentations_initiated_total",
			Help: "Total number of presentation transactions initiated, labeled by response mode and jar mode",
		}, []string{"response_mode", "jar_mode"}),
		RequestObjectsRetrieved: factory.NewCounter(prometheus.CounterOpts{
			Name: "verifier_request_objects_retrieved_total",
			Help: "Total number of signed request objects handed to wallets",
		}),
		WalletResponsesSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_wallet_responses_submitted_total",
			Help: "Total number of accepted wallet responses, labeled by response mode",
		}, []string{"response_mode"}),
		WalletResponsesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "verifier_wallet_responses_rejected_total",
			Help: "Total number of rejected wallet responses, labeled by error code",
		}, []string{"code"}),
		PresentationsTimedOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "verifier_presentations_timed_out_total",
			Help: "Total number of presentations moved to timed out by the sweeper",
		}),
		TimeoutSweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "verifier_timeout_sweep_duration_seconds",
			Help:    "Duration of timeout sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		StoreOperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verifier_store_operation_latency_seconds",
			Help:    "Latency of presentation store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verifier_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds, labeled by route pattern, method and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// The helpers below are nil-safe so that components can run without metrics.

func (m *Metrics) IncrementPresentationsInitiated(responseMode, jarMode string) {
	if m == nil {
		return
	}
	m.PresentationsInitiated.WithLabelValues(responseMode, jarMode).Inc()
}

func (m *Metrics) IncrementRequestObjectsRetrieved() {
	if m == nil {
		return
	}
	m.RequestObjectsRetrieved.Inc()
}

func (m *Metrics) IncrementWalletResponsesSubmitted(responseMode string) {
	if m == nil {
		return
	}
	m.WalletResponsesSubmitted.WithLabelValues(responseMode).Inc()
}

func (m *Metrics) IncrementWalletResponsesRejected(code string) {
	if m == nil {
		return
	}
	m.WalletResponsesRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) AddPresentationsTimedOut(count int) {
	if m == nil {
		return
	}
	m.PresentationsTimedOut.Add(float64(count))
}

func (m *Metrics) ObserveTimeoutSweepDuration(durationSeconds float64) {
	if m == nil {
		return
	}
	m.TimeoutSweepDuration.Observe(durationSeconds)
}

// ObserveStoreOperationLatency records the latency of a store operation.
func (m *Metrics) ObserveStoreOperationLatency(operation string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.StoreOperationLatency.WithLabelValues(operation).Observe(durationSeconds)
}

// ObserveHTTPRequest records one served request. route is the chi route pattern, not the raw path.
func (m *Metrics) ObserveHTTPRequest(route, method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(durationSeconds)
}
