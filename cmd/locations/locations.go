// Package locations provides the locations command
package locations

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/premigrate/internal/migration"
	"github.com/tphakala/premigrate/internal/runtime"
)

// Command creates and returns the locations command
func Command(rc *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Bring destination locations in line with the reference data",
		Long: `Locations inserts every reference location missing from the destination and
updates the code of locations whose code differs. No other field of an
existing location is changed. A report of every location is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := rc.Deps()
			if err != nil {
				return err
			}

			report, err := migration.NewLocationMigrator(deps).UpsertLocations(cmd.Context())
			if flushErr := deps.Ledger.Flush(); flushErr != nil && err == nil {
				err = flushErr
			}
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report)
		},
	}

	return cmd
}

func writeReport(w io.Writer, report []migration.LocationChange) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tID\tCODE\tTYPE\tCHANGE")
	for _, c := range report {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.ID, c.Code, c.Type, c.Change)
	}
	return tw.Flush()
}
