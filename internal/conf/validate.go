// validate.go: settings validation
package conf

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateDatabaseSettings("source", &settings.Source); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateDatabaseSettings("destination", &settings.Destination); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateMigrationSettings(&settings.Migration); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Reports.LedgerPath == "" {
		ve.Errors = append(ve.Errors, "reports.ledgerpath must not be empty")
	}

	if settings.Sentry.Enabled && settings.Sentry.DSN == "" {
		ve.Errors = append(ve.Errors, "sentry.dsn is required when sentry is enabled")
	}

	if settings.Notification.Enabled && len(settings.Notification.URLs) == 0 {
		ve.Errors = append(ve.Errors, "notification.urls is required when notifications are enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(name string, settings *DatabaseSettings) error {
	var errs []string

	switch settings.Driver {
	case DriverSQLite:
		if settings.Path == "" {
			errs = append(errs, "path is required for sqlite")
		}
	case DriverMySQL, DriverPostgres:
		if settings.Host == "" {
			errs = append(errs, "host is required")
		}
		if settings.Database == "" {
			errs = append(errs, "database is required")
		}
		if settings.Port < 1 || settings.Port > 65535 {
			errs = append(errs, fmt.Sprintf("port must be between 1 and 65535, got %d", settings.Port))
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported driver %q", settings.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s database settings: %s", name, strings.Join(errs, "; "))
	}
	return nil
}

func validateMigrationSettings(settings *MigrationSettings) error {
	var errs []string

	if settings.BatchSize < 1 {
		errs = append(errs, fmt.Sprintf("batchsize must be positive, got %d", settings.BatchSize))
	}
	if settings.BatchRate < 0 {
		errs = append(errs, fmt.Sprintf("batchrate must not be negative, got %g", settings.BatchRate))
	}
	if _, err := time.LoadLocation(settings.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone %q", settings.Timezone))
	}
	switch settings.TieBreak {
	case TieBreakVersionAsc, TieBreakVersionDesc, TieBreakCreatedAsc:
	default:
		errs = append(errs, fmt.Sprintf("unknown tiebreak %q", settings.TieBreak))
	}
	if strings.TrimSpace(settings.DefaultLocation) == "" {
		errs = append(errs, "defaultlocation must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("migration settings: %s", strings.Join(errs, "; "))
	}
	return nil
}
