package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation sweep.
type Metrics struct {
	SweepRuns        prometheus.Counter
	MarkedDelinquent prometheus.Counter
	SweepFailures    prometheus.Counter
	SweepDuration    prometheus.Histogram
}

// New creates a new Metrics instance with all sweep metrics registered.
func New() *Metrics {
	return &Metrics{
		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_compliance_sweep_runs_total",
			Help: "Total reconciliation sweep executions",
		}),
		MarkedDelinquent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_compliance_marked_delinquent_total",
			Help: "Total persons marked delinquent by the sweep",
		}),
		SweepFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "custodia_compliance_sweep_failures_total",
			Help: "Total per-person reconciliation failures",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "custodia_compliance_sweep_duration_seconds",
			Help:    "Duration of one full reconciliation sweep",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}
}

// IncrementSweepRuns records one sweep execution.
func (m *Metrics) IncrementSweepRuns() {
	if m != nil {
		m.SweepRuns.Inc()
	}
}

// AddMarkedDelinquent records persons marked delinquent in one sweep.
func (m *Metrics) AddMarkedDelinquent(n int) {
	if m != nil {
		m.MarkedDelinquent.Add(float64(n))
	}
}

// AddSweepFailures records per-person failures in one sweep.
func (m *Metrics) AddSweepFailures(n int) {
	if m != nil {
		m.SweepFailures.Add(float64(n))
	}
}

// ObserveSweepDuration records the duration of one full sweep.
func (m *Metrics) ObserveSweepDuration(d time.Duration) {
	if m != nil {
		m.SweepDuration.Observe(d.Seconds())
	}
}
