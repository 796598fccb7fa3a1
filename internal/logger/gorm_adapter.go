package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes gorm's logging through a Logger. Request and session
// ids carried by the query context end up on every SQL log line.
type GormAdapter struct {
	logger        *Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormAdapter creates a new GORM logger adapter
func NewGormAdapter(logger *Logger, level string) *GormAdapter {
	return &GormAdapter{
		logger:        logger,
		logLevel:      mapToGormLevel(level),
		slowThreshold: 200 * time.Millisecond,
	}
}

// WithSlowThreshold returns a copy reporting queries slower than d
func (g *GormAdapter) WithSlowThreshold(d time.Duration) *GormAdapter {
	adapter := *g
	adapter.slowThreshold = d
	return &adapter
}

// LogMode sets the log level
func (g *GormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	adapter := *g
	adapter.logLevel = level
	return &adapter
}

// Info logs info level messages
func (g *GormAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Info {
		g.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs warn level messages
func (g *GormAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Warn {
		g.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error logs error level messages
func (g *GormAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.logLevel >= gormlogger.Error {
		g.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...), nil)
	}
}

// Trace logs SQL statements with their duration. Missing state rows are
// expected on first load and are not reported.
func (g *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := map[string]interface{}{
		"elapsed_ms": float64(elapsed.Nanoseconds()) / 1e6,
		"rows":       rows,
		"sql":        sql,
	}

	switch {
	case err != nil && g.logLevel >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		g.logger.WithFields(fields).ErrorContext(ctx, "database query failed", err)

	case g.slowThreshold != 0 && elapsed > g.slowThreshold && g.logLevel >= gormlogger.Warn:
		fields["threshold_ms"] = float64(g.slowThreshold.Nanoseconds()) / 1e6
		g.logger.WithFields(fields).WarnContext(ctx, "slow query")

	case g.logLevel >= gormlogger.Info:
		g.logger.WithFields(fields).DebugContext(ctx, "query executed")
	}
}

// mapToGormLevel maps application log level string to GORM log level
func mapToGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}
