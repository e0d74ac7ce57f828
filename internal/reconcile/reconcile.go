// Package reconcile compares what the legacy store held with what reached
// the destination and what the failure ledger explains.
package reconcile

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/premigrate/internal/datastore"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/errors"
	"github.com/tphakala/premigrate/internal/ledger"
	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
)

// maxConcurrentCounts bounds the counting queries in flight.
const maxConcurrentCounts = 4

// metricsLogTimeLayout is the layout of the run timestamp in the metrics log.
const metricsLogTimeLayout = "2006-01-02 15:04:05.000000"

// Row is one line of the reconciliation table.
type Row struct {
	Entity      string
	Source      int64
	Destination int64
	Failed      int
}

// Unaccounted returns the source rows that are neither in the destination
// nor in the failure ledger. Negative values mean the destination holds
// rows that did not come from this source, such as reference data.
func (r Row) Unaccounted() int64 {
	return r.Source - r.Destination - int64(r.Failed)
}

// Config configures a Reporter.
type Config struct {
	Steps      []migration.Step
	Writer     datastore.DestinationWriter
	LedgerPath string
	MetricsLog string
	Log        logger.Logger
}

// Reporter builds the reconciliation table and the run metrics log.
type Reporter struct {
	steps      []migration.Step
	writer     datastore.DestinationWriter
	ledgerPath string
	metricsLog string
	log        logger.Logger
}

// New creates a Reporter.
func New(cfg *Config) *Reporter {
	return &Reporter{
		steps:      cfg.Steps,
		writer:     cfg.Writer,
		ledgerPath: cfg.LedgerPath,
		metricsLog: cfg.MetricsLog,
		log:        cfg.Log.Module("reconcile"),
	}
}

// Summarize counts every entity in the source, the destination and the
// failure ledger. Rows are in migration order.
func (r *Reporter) Summarize(ctx context.Context) ([]Row, error) {
	failures, err := ledger.Counts(r.ledgerPath)
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "count_ledger").
			Context("path", r.ledgerPath).
			Build()
	}

	rows := make([]Row, len(r.steps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCounts)

	for i, step := range r.steps {
		entity := step.Entity()
		rows[i] = Row{Entity: entity, Failed: failures[entity]}

		g.Go(func() error {
			n, err := step.SourceCount(gctx)
			if err != nil {
				return fmt.Errorf("count source rows of %s: %w", entity, err)
			}
			rows[i].Source = n
			return nil
		})
		g.Go(func() error {
			n, err := r.writer.Count(gctx, entity)
			if err != nil {
				return fmt.Errorf("count destination rows of %s: %w", entity, err)
			}
			rows[i].Destination = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryInfrastructure).
			Context("operation", "summarize").
			Build()
	}
	return rows, nil
}

// Totals sums the rows of every destination table except the working
// tables of the engine.
func (r *Reporter) Totals(ctx context.Context) (int64, error) {
	tables, err := r.writer.Tables(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, table := range tables {
		if slices.Contains(entities.WorkingTables, table) {
			continue
		}
		n, err := r.writer.Count(ctx, table)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// AppendRunMetrics appends one line to the run metrics log, writing the
// header first when the log is new.
func (r *Reporter) AppendRunMetrics(totalRows int64, totalFailures int, at time.Time, elapsed time.Duration) error {
	if r.metricsLog == "" {
		return nil
	}

	f, err := os.OpenFile(r.metricsLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "open_metrics_log").
			Context("path", r.metricsLog).
			Build()
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).Context("operation", "stat_metrics_log").Build()
	}

	w := bufio.NewWriter(f)
	if info.Size() == 0 {
		writeMetricsRow(w, "Destination DB count", "Failed migration log count", "Date/Time script run", "Total migration time")
		writeMetricsRow(w, strings.Repeat("-", 20), strings.Repeat("-", 26), strings.Repeat("-", 28), strings.Repeat("-", 24))
	}
	writeMetricsRow(w,
		fmt.Sprint(totalRows),
		fmt.Sprint(totalFailures),
		at.Format(metricsLogTimeLayout),
		fmt.Sprintf("%.2f seconds", elapsed.Seconds()))

	if err := w.Flush(); err != nil {
		return errors.New(err).Category(errors.CategoryFileIO).Context("operation", "write_metrics_log").Build()
	}

	r.log.Debug("run metrics appended", logger.String("path", r.metricsLog))
	return nil
}

func writeMetricsRow(w io.Writer, dest, failed, at, elapsed string) {
	_, _ = fmt.Fprintf(w, "| %-20s | %-26s | %-28s | %-24s |\n", dest, failed, at, elapsed)
}

// WriteTable prints rows as an aligned table followed by a totals line.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ENTITY\tSOURCE\tDESTINATION\tFAILED\tUNACCOUNTED")

	var source, dest, unaccounted int64
	var failed int
	for _, row := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n",
			row.Entity, row.Source, row.Destination, row.Failed, row.Unaccounted())
		source += row.Source
		dest += row.Destination
		failed += row.Failed
		unaccounted += row.Unaccounted()
	}
	_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", "TOTAL", source, dest, failed, unaccounted)
	return tw.Flush()
}
