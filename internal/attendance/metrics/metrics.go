package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance recorder.
type Metrics struct {
	// Recordings by kind and outcome ("ok", "validation", "conflict",
	// "not_found", "error").
	Recordings *prometheus.CounterVec

	// Duration of one full recorder unit of work.
	RecordLatency prometheus.Histogram
}

// New creates a new Metrics instance with all recorder metrics registered.
func New() *Metrics {
	return &Metrics{
		Recordings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "custodia_attendance_recordings_total",
			Help: "Total attendance recording attempts by kind and outcome",
		}, []string{"kind", "outcome"}),

		RecordLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "custodia_attendance_record_duration_seconds",
			Help:    "Duration of one recorder unit of work",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRecording records one recording attempt.
func (m *Metrics) IncrementRecording(kind, outcome string) {
	if m != nil {
		m.Recordings.WithLabelValues(kind, outcome).Inc()
	}
}

// ObserveRecordLatency records the duration of a recorder unit of work.
func (m *Metrics) ObserveRecordLatency(d time.Duration) {
	if m != nil {
		m.RecordLatency.Observe(d.Seconds())
	}
}
