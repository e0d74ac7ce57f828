// Package datastore opens the legacy and destination stores and provides the
// read and write primitives used by the migration engine.
package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/datastore/entities"
	"github.com/tphakala/premigrate/internal/logger"
	"gorm.io/gorm"
)

// slowStatementThreshold is the duration after which a statement is logged as slow.
const slowStatementThreshold = 500 * time.Millisecond

// Manager owns one database connection.
type Manager struct {
	db       *gorm.DB
	driver   string
	location string
}

// Open connects to the database described by cfg.
func Open(cfg *conf.DatabaseSettings, log logger.Logger) (*Manager, error) {
	switch cfg.Driver {
	case conf.DriverSQLite:
		return NewSQLiteManager(cfg.Path, log)
	case conf.DriverMySQL:
		return NewMySQLManager(cfg, log)
	case conf.DriverPostgres:
		return NewPostgresManager(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormConfig(log logger.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, slowStatementThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Initialize creates the destination schema.
func (m *Manager) Initialize() error {
	if err := m.db.AutoMigrate(entities.All()...); err != nil {
		return fmt.Errorf("failed to migrate destination schema: %w", err)
	}

	state := entities.MigrationState{ID: 1, State: entities.MigrationStatusIdle}
	if err := m.db.FirstOrCreate(&state, entities.MigrationState{ID: 1}).Error; err != nil {
		return fmt.Errorf("failed to initialize migration state: %w", err)
	}
	return nil
}

// DB returns the underlying GORM database.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Driver returns the configured driver name.
func (m *Manager) Driver() string {
	return m.driver
}

// Location returns the database location for display.
func (m *Manager) Location() string {
	return m.location
}

// Close closes the database connection.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}
