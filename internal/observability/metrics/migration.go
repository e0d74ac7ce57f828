package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MigrationMetrics contains Prometheus metrics for migration runs.
// All recording methods are no-ops on a nil receiver.
type MigrationMetrics struct {
	rowsTotal        *prometheus.CounterVec
	batchesTotal     *prometheus.CounterVec
	entityDuration   *prometheus.HistogramVec
	auditErrorsTotal *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
	lastRunDuration  prometheus.Gauge
	lastRunSuccess   prometheus.Gauge

	collectors []prometheus.Collector
}

// NewMigrationMetrics creates and registers new migration metrics
func NewMigrationMetrics(registry *prometheus.Registry) (*MigrationMetrics, error) {
	m := &MigrationMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MigrationMetrics) initMetrics() {
	m.rowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premigrate_rows_total",
			Help: "Total number of source rows processed",
		},
		[]string{"entity", "outcome"}, // outcome: inserted, skipped, failed
	)

	m.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premigrate_batches_total",
			Help: "Total number of insert batches",
		},
		[]string{"entity", "status"}, // status: committed, rolled_back
	)

	m.entityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "premigrate_entity_duration_seconds",
			Help:    "Time taken to migrate one entity",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount15), // 10ms to ~160s
		},
		[]string{"entity"},
	)

	m.auditErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premigrate_audit_write_errors_total",
			Help: "Total number of provenance rows that could not be written",
		},
		[]string{"entity"},
	)

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "premigrate_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})
	m.lastRunDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "premigrate_last_run_duration_seconds",
		Help: "Duration of the last run",
	})
	m.lastRunSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "premigrate_last_run_success",
		Help: "1 if the last run attempted every entity, 0 if it halted",
	})

	m.collectors = []prometheus.Collector{
		m.rowsTotal,
		m.batchesTotal,
		m.entityDuration,
		m.auditErrorsTotal,
		m.lastRunTimestamp,
		m.lastRunDuration,
		m.lastRunSuccess,
	}
}

// Describe implements the Collector interface
func (m *MigrationMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *MigrationMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRows adds n rows with the given outcome for entity.
func (m *MigrationMetrics) RecordRows(entity, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(entity, outcome).Add(float64(n))
}

// RecordBatch records one insert batch.
func (m *MigrationMetrics) RecordBatch(entity, status string) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(entity, status).Inc()
}

// ObserveEntityDuration records the time spent on one entity.
func (m *MigrationMetrics) ObserveEntityDuration(entity string, d time.Duration) {
	if m == nil {
		return
	}
	m.entityDuration.WithLabelValues(entity).Observe(d.Seconds())
}

// RecordAuditError counts a provenance row that could not be written.
func (m *MigrationMetrics) RecordAuditError(entity string) {
	if m == nil {
		return
	}
	m.auditErrorsTotal.WithLabelValues(entity).Inc()
}

// RecordRun records the outcome of a whole run.
func (m *MigrationMetrics) RecordRun(status string, finished time.Time, d time.Duration) {
	if m == nil {
		return
	}
	m.lastRunTimestamp.Set(float64(finished.Unix()))
	m.lastRunDuration.Set(d.Seconds())
	if status == RunCompleted {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
}
