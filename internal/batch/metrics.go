package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts processed rows for one process run. It uses its own
// registry so a run can be exported as a node_exporter textfile without the
// Go runtime collectors.
type Metrics struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the batch metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "invoicer",
			Name:      "rows_total",
			Help:      "Rows processed, by operation and status.",
		}, []string{"op", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invoicer",
			Name:      "row_duration_seconds",
			Help:      "Time spent per row, including rendering and sending.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.rows, m.duration)
	return m
}

// Observe records one outcome.
func (m *Metrics) Observe(op string, o Outcome) {
	status := "ok"
	if o.Err != nil {
		status = "error"
	}
	m.rows.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(o.Duration.Seconds())
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
