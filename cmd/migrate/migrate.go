// Package migrate provides the migrate command
package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tphakala/premigrate/internal/logger"
	"github.com/tphakala/premigrate/internal/migration"
	"github.com/tphakala/premigrate/internal/notification"
	"github.com/tphakala/premigrate/internal/reconcile"
	"github.com/tphakala/premigrate/internal/runtime"
)

// Command creates and returns the migrate command
func Command(rc *runtime.Context) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate every entity from the legacy store",
		Long: `Migrate reads the legacy store and writes every entity into the destination in
dependency order. Rows that cannot be migrated are written to the failure
ledger; the run only stops for infrastructure errors. Running it again inserts
nothing that is already present.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd.Context(), cmd.OutOrStdout(), rc, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Start even if the destination records a run in progress")

	return cmd
}

func runMigration(ctx context.Context, out io.Writer, rc *runtime.Context, force bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := rc.Deps()
	if err != nil {
		return err
	}

	orch := migration.NewOrchestrator(&migration.OrchestratorConfig{
		Deps:  deps,
		State: rc.State(),
		Force: force,
	})
	report, runErr := orch.Run(ctx)

	// Reports are written for halted and interrupted runs as well.
	reportCtx := context.WithoutCancel(ctx)
	if err := writeReports(reportCtx, out, rc, orch.Steps(), report); err != nil {
		rc.Log.Warn("failed to write run reports", logger.Error(err))
	}
	if err := rc.WriteMetrics(); err != nil {
		rc.Log.Warn("failed to write metrics textfile", logger.Error(err))
	}
	_ = notification.NewFromSettings(rc.Settings, rc.Log).NotifyRun(reportCtx, report, runErr)

	switch {
	case runErr == nil:
		return nil
	case report.Halted:
		return fmt.Errorf("migration halted at %s: %w", report.HaltedAt, runErr)
	default:
		return fmt.Errorf("migration did not start: %w", runErr)
	}
}

// writeReports prints the reconciliation table and appends the run to the
// metrics log.
func writeReports(ctx context.Context, out io.Writer, rc *runtime.Context, steps []migration.Step, report *migration.RunReport) error {
	reporter := rc.Reporter(steps)

	rows, err := reporter.Summarize(ctx)
	if err != nil {
		return err
	}
	if err := reconcile.WriteTable(out, rows); err != nil {
		return err
	}

	total, err := reporter.Totals(ctx)
	if err != nil {
		return err
	}
	failures := 0
	for _, row := range rows {
		failures += row.Failed
	}
	return reporter.AppendRunMetrics(total, failures, report.StartedAt, report.Elapsed)
}
