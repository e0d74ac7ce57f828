package datastore

import (
	"fmt"
	"time"

	"github.com/tphakala/premigrate/internal/conf"
	"github.com/tphakala/premigrate/internal/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQLManager opens a MySQL database.
func NewMySQLManager(cfg *conf.DatabaseSettings, log logger.Logger) (*Manager, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
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
		driver:   conf.DriverMySQL,
		location: cfg.Location(),
	}, nil
}
