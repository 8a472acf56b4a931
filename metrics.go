package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of the sign and lookup counters.
const (
	outcomeSuccess        = "success"
	outcomeInvalidRequest = "invalid_request"
	outcomeKeyError       = "key_error"
	outcomeEncodingError  = "encoding_error"
	outcomeError          = "error"
)

// Metrics contains all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Signing metrics
	SignRequests *prometheus.CounterVec
	SignDuration prometheus.Histogram
	SignerReady  prometheus.Gauge

	// Public key lookup metrics
	PublicKeyLookups        *prometheus.CounterVec
	PublicKeyLookupDuration prometheus.Histogram
}

// NewMetrics initializes and registers Prometheus metrics
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers Prometheus metrics with a custom registry
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "galasigner_http_requests_total",
				Help: "The total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "galasigner_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route"},
		),
		SignRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "galasigner_sign_requests_total",
				Help: "The total number of signing requests by outcome",
			},
			[]string{"outcome"},
		),
		SignDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "galasigner_sign_duration_seconds",
			Help:    "Time spent canonicalizing, hashing and signing one payload",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		SignerReady: factory.NewGauge(prometheus.GaugeOpts{
			Name: "galasigner_signer_ready",
			Help: "1 when a valid private key is configured, 0 otherwise",
		}),
		PublicKeyLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "galasigner_pubkey_lookups_total",
				Help: "The total number of public key lookups by outcome",
			},
			[]string{"outcome"},
		),
		PublicKeyLookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "galasigner_pubkey_lookup_duration_seconds",
			Help:    "Public key lookup latency including retries",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// SetSignerReady records whether signing requests can succeed.
func (m *Metrics) SetSignerReady(ready bool) {
	if ready {
		m.SignerReady.Set(1)
		return
	}
	m.SignerReady.Set(0)
}
