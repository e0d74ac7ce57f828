// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"source.driver", "SOURCE_DB_DRIVER", validateEnvDriver},
		{"source.host", "SOURCE_DB_HOST", nil},
		{"source.port", "SOURCE_DB_PORT", validateEnvPort},
		{"source.user", "SOURCE_DB_USER", nil},
		{"source.password", "SOURCE_DB_PASSWORD", nil},
		{"source.passwordfile", "SOURCE_DB_PASSWORD_FILE", nil},
		{"source.database", "SOURCE_DB_NAME", nil},
		{"source.path", "SOURCE_DB_PATH", nil},

		{"destination.driver", "DESTINATION_DB_DRIVER", validateEnvDriver},
		{"destination.host", "DESTINATION_DB_HOST", nil},
		{"destination.port", "DESTINATION_DB_PORT", validateEnvPort},
		{"destination.user", "DESTINATION_DB_USER", nil},
		{"destination.password", "DESTINATION_DB_PASSWORD", nil},
		{"destination.passwordfile", "DESTINATION_DB_PASSWORD_FILE", nil},
		{"destination.database", "DESTINATION_DB_NAME", nil},
		{"destination.path", "DESTINATION_DB_PATH", nil},

		{"migration.batchsize", "MIGRATION_BATCH_SIZE", validateEnvBatchSize},
		{"migration.timezone", "MIGRATION_TIMEZONE", nil},
		{"migration.createschema", "MIGRATION_CREATE_SCHEMA", validateEnvBool},

		{"sentry.enabled", "SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value: %v", binding.EnvVar, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvDriver(value string) error {
	switch value {
	case DriverSQLite, DriverMySQL, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("driver must be one of %s, %s, %s, got '%s'", DriverSQLite, DriverMySQL, DriverPostgres, value)
	}
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvBatchSize(value string) error {
	size, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid batch size: %w", err)
	}
	if size < 1 {
		return fmt.Errorf("batch size must be positive, got %d", size)
	}
	return nil
}
