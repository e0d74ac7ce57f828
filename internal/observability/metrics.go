// Package observability provides metrics for migration runs.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tphakala/premigrate/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Migration *metrics.MigrationMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	migrationMetrics, err := metrics.NewMigrationMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Migration: migrationMetrics,
	}, nil
}

// WriteTextfile writes all metrics to path in the Prometheus text format,
// for collection by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
