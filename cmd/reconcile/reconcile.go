// Package reconcile provides the reconcile command
package reconcile

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/premigrate/internal/migration"
	"github.com/tphakala/premigrate/internal/reconcile"
	"github.com/tphakala/premigrate/internal/runtime"
)

// Command creates and returns the reconcile command
func Command(rc *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare source, destination and failure ledger counts",
		Long:  `Reconcile counts every entity in the legacy store, the destination and the failure ledger and prints the result as a table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := rc.Deps()
			if err != nil {
				return err
			}

			rows, err := rc.Reporter(migration.Steps(deps)).Summarize(cmd.Context())
			if err != nil {
				return err
			}
			return reconcile.WriteTable(cmd.OutOrStdout(), rows)
		},
	}

	return cmd
}
