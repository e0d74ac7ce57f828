package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/premigrate/cmd/locations"
	"github.com/tphakala/premigrate/cmd/migrate"
	"github.com/tphakala/premigrate/cmd/reconcile"
	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/runtime"
	"github.com/tphakala/premigrate/internal/telemetry"
)

// flagBindings maps persistent flags onto configuration keys.
var flagBindings = map[string]string{
	"debug":            "debug",
	"log-level":        "logging.level",
	"batch-size":       "migration.batchsize",
	"batch-rate":       "migration.batchrate",
	"tie-break":        "migration.tiebreak",
	"default-location": "migration.defaultlocation",
	"create-schema":    "migration.createschema",
	"ledger":           "reports.ledgerpath",
}

// RootCommand creates and returns the root command
func RootCommand(rc *runtime.Context) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "premigrate",
		Short:         "Migrate the legacy capture store into the normalized schema",
		Version:       rc.Build.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, &configFile); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		migrate.Command(rc),
		reconcile.Command(rc),
		locations.Command(rc),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(cmd, rc, configFile)
	}

	return rootCmd
}

// initialize loads the configuration and opens the shared resources before
// any subcommand runs.
func initialize(cmd *cobra.Command, rc *runtime.Context, configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}
	rc.Settings = settings

	// Logs go to stderr so reports on stdout stay machine-readable.
	if err := rc.InitLogger(cmd.ErrOrStderr()); err != nil {
		return err
	}
	if err := telemetry.InitSentry(settings, rc.Build, rc.Log); err != nil {
		return err
	}
	if err := rc.InitMetrics(); err != nil {
		return err
	}
	return rc.OpenDatabases()
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(configFile, "config", "c", "", "Path to the configuration file")
	pf.BoolP("debug", "d", false, "Enable debug output")
	pf.String("log-level", "", "Log level: trace, debug, info, warn or error")
	pf.Int("batch-size", 0, "Rows per insert transaction")
	pf.Float64("batch-rate", 0, "Batches per second, 0 for unlimited")
	pf.String("tie-break", "", "Representative ordering: version-asc, version-desc or created-asc")
	pf.String("default-location", "", "Location assigned when a court name cannot be matched")
	pf.Bool("create-schema", false, "Create the destination schema before migrating")
	pf.String("ledger", "", "Path of the failure ledger file")

	for flag, key := range flagBindings {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
