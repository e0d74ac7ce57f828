package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"
)

const (
	// LogFilePermissions is the default file permissions for log files (rw-------)
	LogFilePermissions = 0o600

	levelTrace = slog.Level(-8)
)

// SlogLogger implements Logger interface using Go's standard log/slog
type SlogLogger struct {
	handler  slog.Handler
	level    slog.Level
	module   string
	timezone *time.Location
	fields   []Field
	logFile  *os.File
	mu       *sync.RWMutex // shared with derived loggers, protects logFile
}

// NewSlogLogger creates a new slog-based logger with JSON output
func NewSlogLogger(writer io.Writer, level LogLevel, timezone *time.Location) *SlogLogger {
	if writer == nil {
		writer = os.Stdout
	}
	if timezone == nil {
		timezone = time.UTC
	}

	return &SlogLogger{
		handler:  newJSONHandler(writer, parseSlogLevel(level), timezone),
		level:    parseSlogLevel(level),
		timezone: timezone,
		mu:       &sync.RWMutex{},
	}
}

// NewSlogLoggerWithFile creates a logger that writes JSON to filePath and a
// copy of every line to console. console may be nil.
func NewSlogLoggerWithFile(filePath string, console io.Writer, level LogLevel, timezone *time.Location) (*SlogLogger, error) {
	if timezone == nil {
		timezone = time.UTC
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	var writer io.Writer = file
	if console != nil {
		writer = io.MultiWriter(file, console)
	}

	return &SlogLogger{
		handler:  newJSONHandler(writer, parseSlogLevel(level), timezone),
		level:    parseSlogLevel(level),
		timezone: timezone,
		logFile:  file,
		mu:       &sync.RWMutex{},
	}, nil
}

func newJSONHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch {
			case a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime:
				return slog.Time(slog.TimeKey, a.Value.Time().In(tz))
			case a.Key == slog.LevelKey:
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelTrace {
					return slog.String(slog.LevelKey, "TRACE")
				}
			}
			return a
		},
	})
}

func (l *SlogLogger) derive(module string, fields []Field) *SlogLogger {
	return &SlogLogger{
		handler:  l.handler,
		level:    l.level,
		module:   module,
		timezone: l.timezone,
		fields:   fields,
		logFile:  l.logFile,
		mu:       l.mu,
	}
}

// Module returns a logger scoped to a specific module
func (l *SlogLogger) Module(name string) Logger {
	if l == nil {
		return nil
	}

	moduleName := name
	if l.module != "" {
		moduleName = l.module + "." + name
	}
	return l.derive(moduleName, l.fields)
}

// Trace logs a trace message (most verbose level)
func (l *SlogLogger) Trace(msg string, fields ...Field) {
	l.logAt(levelTrace, msg, fields...)
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, fields ...Field) {
	l.logAt(slog.LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *SlogLogger) Info(msg string, fields ...Field) {
	l.logAt(slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(msg string, fields ...Field) {
	l.logAt(slog.LevelWarn, msg, fields...)
}

// Error logs an error message
func (l *SlogLogger) Error(msg string, fields ...Field) {
	l.logAt(slog.LevelError, msg, fields...)
}

// Log logs a message with explicit level
func (l *SlogLogger) Log(level LogLevel, msg string, fields ...Field) {
	l.logAt(parseSlogLevel(level), msg, fields...)
}

// With returns a new logger with accumulated fields
func (l *SlogLogger) With(fields ...Field) Logger {
	if l == nil {
		return nil
	}
	return l.derive(l.module, slices.Concat(l.fields, fields))
}

// WithContext returns a logger carrying the run id found in ctx, if any
func (l *SlogLogger) WithContext(ctx context.Context) Logger {
	if l == nil {
		return nil
	}
	if ctx == nil {
		return l
	}
	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		return l.With(String("run_id", runID))
	}
	return l
}

// Flush ensures all buffered logs are written
func (l *SlogLogger) Flush() error {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.logFile != nil {
		if err := l.logFile.Sync(); err != nil {
			return fmt.Errorf("failed to sync log file: %w", err)
		}
	}
	return nil
}

// Close closes the log file if open
func (l *SlogLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		l.logFile = nil
	}
	return nil
}

func (l *SlogLogger) logAt(level slog.Level, msg string, fields ...Field) {
	if l == nil || level < l.level {
		return
	}

	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)+1)
	if l.module != "" {
		attrs = append(attrs, slog.String("module", l.module))
	}
	for _, f := range l.fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}

	slog.New(l.handler).LogAttrs(context.Background(), level, msg, attrs...)
}

// fieldToAttr converts Field to slog.Attr
func fieldToAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case float64:
		return slog.Float64(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	case time.Time:
		return slog.Time(f.Key, v)
	case time.Duration:
		return slog.Duration(f.Key, v)
	default:
		return slog.Any(f.Key, v)
	}
}

// parseSlogLevel converts LogLevel to slog.Level
func parseSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelTrace:
		return levelTrace
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
