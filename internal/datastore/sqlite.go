package datastore

import (
	"fmt"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteManager opens the SQLite database at path.
func NewSQLiteManager(path string, log logger.Logger) (*Manager, error) {
	// Foreign keys are off by default in SQLite.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON", path)

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// A single connection keeps savepoints and pragmas on one session.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Manager{
		db:       db,
		driver:   conf.DriverSQLite,
		location: path,
	}, nil
}
