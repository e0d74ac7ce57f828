package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresManager opens a PostgreSQL database through pgx.
func NewPostgresManager(cfg *conf.DatabaseSettings, log logger.Logger) (*Manager, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{
		db:       db,
		driver:   conf.DriverPostgres,
		location: cfg.Location(),
	}, nil
}
