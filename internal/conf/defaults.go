// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")

	viper.SetDefault("source.driver", DriverPostgres)
	viper.SetDefault("source.host", "localhost")
	viper.SetDefault("source.port", 5432)
	viper.SetDefault("source.sslmode", "require")
	viper.SetDefault("source.passwordfile", "")

	viper.SetDefault("destination.driver", DriverPostgres)
	viper.SetDefault("destination.host", "localhost")
	viper.SetDefault("destination.port", 5432)
	viper.SetDefault("destination.sslmode", "require")
	viper.SetDefault("destination.passwordfile", "")

	viper.SetDefault("migration.batchsize", 100)
	viper.SetDefault("migration.batchrate", 0)
	viper.SetDefault("migration.timezone", "Europe/London")
	viper.SetDefault("migration.tiebreak", TieBreakVersionAsc)
	viper.SetDefault("migration.defaultlocation", DefaultLocationName)
	viper.SetDefault("migration.createschema", false)
	viper.SetDefault("migration.referencefile", "")
	viper.SetDefault("migration.sessionevents.started", "Start Recording")
	viper.SetDefault("migration.sessionevents.finished", "Stop Recording")

	viper.SetDefault("reports.ledgerpath", "failed_imports_log.txt")
	viper.SetDefault("reports.metricslog", "migration_summary_log.txt")
	viper.SetDefault("reports.metricstextfile", "")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	viper.SetDefault("notification.enabled", false)
	viper.SetDefault("notification.urls", []string{})
	viper.SetDefault("notification.timeout", 10*time.Second)
}
