package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	QuotesReturned  *prometheus.HistogramVec
}

// NewMetrics creates Prometheus metrics registered against reg, so each
// server owns its own registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rateshop_requests_total",
				Help: "Total number of requests by operation and status",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rateshop_request_duration_seconds",
				Help:    "Request duration in seconds by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rateshop_carrier_errors_total",
				Help: "Total carrier failures by carrier and error kind",
			},
			[]string{"carrier", "kind"},
		),
		QuotesReturned: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rateshop_quotes_returned",
				Help:    "Quotes returned per rate-shopping request",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
			[]string{"operation"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, status).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCarrierError records a carrier failure metric.
func (m *Metrics) RecordCarrierError(carrier, kind string) {
	m.CarrierErrors.WithLabelValues(carrier, kind).Inc()
}

// RecordQuotes records how many quotes a request produced.
func (m *Metrics) RecordQuotes(operation string, count int) {
	m.QuotesReturned.WithLabelValues(operation).Observe(float64(count))
}
