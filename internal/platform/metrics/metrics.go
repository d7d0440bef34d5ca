package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-level Prometheus metrics. Per-module metrics
// (attendance, compliance, stats) live next to their modules.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	PersonsCreated prometheus.Counter
}

// New creates and registers all application-level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "custodia_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "status"}),

		PersonsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_persons_created_total",
			Help: "Total number of monitored persons registered",
		}),
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, status).Observe(d.Seconds())
	}
}

// IncrementPersonsCreated increments the persons created counter by 1.
func (m *Metrics) IncrementPersonsCreated() {
	if m != nil {
		m.PersonsCreated.Inc()
	}
}
