// config.go: configuration loading for premigrate
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings contains all configuration options for a migration run.
type Settings struct {
	Debug bool // true to enable debug mode

	Logging struct {
		Level string // trace, debug, info, warn, error
		File  string // optional JSON log file, written in addition to stdout
	}

	Source      DatabaseSettings // legacy store
	Destination DatabaseSettings // normalized store

	Migration MigrationSettings

	Reports struct {
		LedgerPath      string // failure ledger file
		MetricsLog      string // run metrics log, one line per run
		MetricsTextfile string // optional Prometheus textfile export
	}

	Sentry struct {
		Enabled bool   // true to report infrastructure errors to Sentry
		DSN     string // Sentry project DSN
	}

	Notification struct {
		Enabled bool          // true to send a run summary when a run ends
		URLs    []string      // shoutrrr service URLs
		Timeout time.Duration // per-send timeout
	}
}

// DatabaseSettings describes how to reach one relational store.
type DatabaseSettings struct {
	Driver       string // sqlite, mysql or postgres
	Host         string
	Port         int
	User         string
	Password     string // literal or ${ENV} reference
	PasswordFile string // mounted secret file, wins over Password
	Database     string
	SSLMode      string // postgres only
	Path         string // sqlite only
}

// Location returns a printable location that never contains credentials.
func (d *DatabaseSettings) Location() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.Database)
}

// MigrationSettings controls the behaviour of the migration engine.
type MigrationSettings struct {
	BatchSize       int     // rows per insert transaction
	BatchRate       float64 // batches per second, 0 for unlimited
	Timezone        string  // zone applied to legacy wall-clock timestamps
	TieBreak        string  // representative ordering inside a recording group
	DefaultLocation string  // fallback location name
	CreateSchema    bool    // run AutoMigrate on the destination before migrating
	ReferenceFile   string  // optional override of the embedded reference data

	SessionEvents struct {
		Started  string // audit activity marking the start of a capture
		Finished string // audit activity marking the end of a capture
	}
}

// Location loads the configured timezone.
func (m *MigrationSettings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid migration timezone %q: %w", m.Timezone, err)
	}
	return loc, nil
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads .env, the configuration file and environment variables into a
// Settings value. configFile may be empty to search the default paths.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := bindEnvVars(); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// GetSettings returns the settings loaded by the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// initViper sets defaults and reads the configuration file.
func initViper(configFile string) error {
	setDefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("fatal error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range GetDefaultConfigPaths() {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Defaults and environment variables are enough to run.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "premigrate"))
	}
	return append(paths, "/etc/premigrate")
}

// loadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}
