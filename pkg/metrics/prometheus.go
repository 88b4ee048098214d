// Package metrics provides Prometheus metrics for batch preparation runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns a registry and the metrics of one process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	rowsProcessed  prometheus.Counter
	columnsAdded   *prometheus.CounterVec
	stepDuration   *prometheus.HistogramVec
	stepErrors     *prometheus.CounterVec
	fitDuration    prometheus.Histogram
	boostingRounds prometheus.Counter
}

// NewManager creates a Manager on a fresh registry unless one is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tabprep",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_processed_total",
		Help:      "Total number of table rows read for preparation",
	})
	m.columnsAdded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "columns_added_total",
		Help:      "Net number of columns added, per step",
	}, []string{"step"})
	m.stepDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "step_duration_seconds",
		Help:      "Time spent in each pipeline step",
		Buckets:   m.histogramBuckets,
	}, []string{"step"})
	m.stepErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "step_errors_total",
		Help:      "Number of failed pipeline steps",
	}, []string{"step"})
	m.fitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fit_duration_seconds",
		Help:      "Time spent fitting the importance model",
		Buckets:   m.histogramBuckets,
	})
	m.boostingRounds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "boosting_rounds_total",
		Help:      "Number of boosting rounds fitted",
	})
}

// Registry returns the registry backing this Manager.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordRows counts rows read into a run.
func (m *Manager) RecordRows(n int) {
	if n > 0 {
		m.rowsProcessed.Add(float64(n))
	}
}

// StepDone records one pipeline step. Columns are only counted when the
// step grew the table.
func (m *Manager) StepDone(step string, _ int, addedCols int, elapsed time.Duration, err error) {
	m.stepDuration.WithLabelValues(step).Observe(elapsed.Seconds())
	if err != nil {
		m.stepErrors.WithLabelValues(step).Inc()
		return
	}
	if addedCols > 0 {
		m.columnsAdded.WithLabelValues(step).Add(float64(addedCols))
	}
}

// RecordFit records a finished model fit.
func (m *Manager) RecordFit(elapsed time.Duration, rounds int) {
	m.fitDuration.Observe(elapsed.Seconds())
	if rounds > 0 {
		m.boostingRounds.Add(float64(rounds))
	}
}

// WriteTextfile writes the registry in the text exposition format, for
// node_exporter's textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}
