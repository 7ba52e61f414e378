package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Byte and entry direction labels.
const (
	DirectionRead  = "read"
	DirectionWrite = "write"
)

// Metrics holds the Prometheus collectors for node operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Bytes             *prometheus.CounterVec
	ArchiveEntries    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// Passing nil registers on the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandfs_operations_total",
				Help: "Total number of node operations",
			},
			[]string{"op", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sandfs_operation_duration_seconds",
				Help:    "Node operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"op"},
		),
		Bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandfs_bytes_total",
				Help: "Bytes read from or written to node content",
			},
			[]string{"direction"},
		),
		ArchiveEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandfs_archive_entries_total",
				Help: "Archive entries written (compress) or read (extract)",
			},
			[]string{"direction"},
		),
	}
}

// RecordOperation records one finished operation.
func (m *Metrics) RecordOperation(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.Operations.WithLabelValues(op, result).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// AddBytes adds n transferred bytes in the given direction.
func (m *Metrics) AddBytes(direction string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Bytes.WithLabelValues(direction).Add(float64(n))
}

// AddArchiveEntries adds n archive entries in the given direction.
func (m *Metrics) AddArchiveEntries(direction string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ArchiveEntries.WithLabelValues(direction).Add(float64(n))
}

// Timer measures one operation. The operation name is supplied when it
// stops, since callers often only know it then.
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer starts a timer that reports into metrics, which may be nil.
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
	}
}

// Stop records the elapsed time under op and returns it.
func (t *Timer) Stop(op string, err error) time.Duration {
	duration := time.Since(t.start)
	t.metrics.RecordOperation(op, duration, err)
	return duration
}
