package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// GormLoggerAdapter adapts Logger to GORM's logger.Interface.
// Statements are logged at TRACE level so they only appear when the
// configured level is "trace".
type GormLoggerAdapter struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewGormLoggerAdapter creates a new GORM logger adapter. Statements slower
// than slowThreshold are logged at WARN; 0 disables slow statement warnings.
func NewGormLoggerAdapter(log Logger, slowThreshold time.Duration) *GormLoggerAdapter {
	if log == nil {
		log = NewSlogLogger(nil, LogLevelInfo, nil)
	}
	return &GormLoggerAdapter{
		logger:        log,
		slowThreshold: slowThreshold,
	}
}

// LogMode returns the adapter itself; the level is owned by Logger.
func (a *GormLoggerAdapter) LogMode(_ gorm_logger.LogLevel) gorm_logger.Interface {
	return a
}

// Info maps GORM's verbose info output to DEBUG.
func (a *GormLoggerAdapter) Info(_ context.Context, msg string, data ...any) {
	a.logger.Debug(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Warn(_ context.Context, msg string, data ...any) {
	a.logger.Warn(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Error(_ context.Context, msg string, data ...any) {
	a.logger.Error(fmt.Sprintf(msg, data...))
}

// Trace logs a statement after it ran. Failed statements are logged at DEBUG
// because constraint failures are expected and land in the failure ledger.
func (a *GormLoggerAdapter) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.logger.Debug("statement failed",
			String("sql", sql),
			Int64("rows_affected", rows),
			Int64("duration_ms", elapsed.Milliseconds()),
			Error(err))

	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.logger.Warn("slow statement",
			String("sql", sql),
			Int64("rows_affected", rows),
			Int64("duration_ms", elapsed.Milliseconds()),
			Duration("threshold", a.slowThreshold))

	default:
		a.logger.Trace("sql statement",
			String("sql", sql),
			Int64("rows_affected", rows),
			Int64("duration_ms", elapsed.Milliseconds()))
	}
}
