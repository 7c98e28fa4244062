package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	providerRequests *prometheus.CounterVec
	cacheOps         *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpull_provider_requests_total",
				Help: "Provider fetch attempts by provider and result",
			},
			[]string{"provider", "result"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpull_cache_operations_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalpull_last_price",
				Help: "Last fetched price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordProviderRequest records one provider fetch attempt.
func (r *Recorder) RecordProviderRequest(provider, result string) {
	r.providerRequests.WithLabelValues(provider, result).Inc()
}

// RecordCache records a cache lookup result ("hit" or "miss").
func (r *Recorder) RecordCache(cache, result string) {
	r.cacheOps.WithLabelValues(cache, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
