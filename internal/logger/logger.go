// Package logger provides a structured, module-aware logging system built on Go's standard log/slog.
//
// Components receive a Logger through their constructors and scope it with
// Module:
//
//	log := logger.NewSlogLogger(os.Stdout, logger.LogLevelInfo, time.UTC)
//	casesLog := log.Module("migration").Module("cases")
//	casesLog.Info("entity migrated", logger.Int("migrated", 42))
//
// Output is JSON, one object per line:
//
//	{"time":"2025-01-12T10:30:00Z","level":"INFO","msg":"entity migrated","module":"migration.cases","migrated":42}
//
// Use a discard logger in tests:
//
//	testLogger := logger.NewSlogLogger(io.Discard, logger.LogLevelError, time.UTC)
package logger

import (
	"context"
	"time"
	"unique"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ParseLevel maps a configuration string onto a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch LogLevel(s) {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(s)
	default:
		return LogLevelInfo
	}
}

// Field represents a structured log field.
// Keys are interned using unique.Make() so repeated keys share one allocation.
type Field struct {
	Key   string
	Value any
}

func internKey(key string) string {
	return unique.Make(key).Value()
}

var errorKey = internKey("error")

// contextKey is the type for context keys understood by WithContext
type contextKey string

// RunIDKey carries the migration run identifier through a context.
const RunIDKey contextKey = "run_id"

// Logger is the centralized logging interface for dependency injection
type Logger interface {
	// Module returns a logger scoped to a specific module
	Module(name string) Logger

	// Leveled logging methods
	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Context-aware logging
	With(fields ...Field) Logger
	WithContext(ctx context.Context) Logger

	// Log with explicit level
	Log(level LogLevel, msg string, fields ...Field)

	// Flush ensures all buffered logs are written
	Flush() error
}

// String creates a string field for structured logging.
func String(key, value string) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int creates an integer field for structured logging.
func Int(key string, value int) Field {
	return Field{Key: internKey(key), Value: value}
}

// Int64 creates a 64-bit integer field for structured logging.
func Int64(key string, value int64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Float64 creates a 64-bit float field for structured logging.
func Float64(key string, value float64) Field {
	return Field{Key: internKey(key), Value: value}
}

// Bool creates a boolean field for structured logging.
func Bool(key string, value bool) Field {
	return Field{Key: internKey(key), Value: value}
}

// Error creates an error field. The key is always "error"; a nil err yields a nil value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: errorKey, Value: nil}
	}
	return Field{Key: errorKey, Value: err.Error()}
}

// Duration creates a duration field rendered as a string (e.g. "1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{Key: internKey(key), Value: value.String()}
}

// Time creates a time field for structured logging.
func Time(key string, value time.Time) Field {
	return Field{Key: internKey(key), Value: value}
}

// Any creates a field with any value. Prefer the typed constructors.
func Any(key string, value any) Field {
	return Field{Key: internKey(key), Value: value}
}
