package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM output into zap, tagged with the request, account
// and order code carried by the statement's context.
//
// Record-not-found is never logged: an unknown order code on a callback is
// an expected outcome, not a database fault.
type GormLogger struct {
	base  *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is warned
// about. Zero disables slow query warnings.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{base: base.Named("sql"), level: level, slow: defaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Info, msg, args)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Warn, msg, args)
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Error, msg, args)
}

func (l *GormLogger) printf(ctx context.Context, at gormlogger.LogLevel, msg string, args []any) {
	if l.level < at {
		return
	}
	s := Enrich(ctx, l.base).Sugar()
	switch at {
	case gormlogger.Error:
		s.Errorf(msg, args...)
	case gormlogger.Warn:
		s.Warnf(msg, args...)
	default:
		s.Infof(msg, args...)
	}
}

// Trace logs one executed statement. Statements that take a row lock are
// marked so the settlement path can be followed in the logs.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	log := Enrich(ctx, l.base).With(
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	)
	if strings.Contains(strings.ToUpper(sql), "FOR UPDATE") {
		log = log.With(zap.Bool("row_lock", true))
	}

	switch {
	case err != nil:
		if l.level >= gormlogger.Error {
			log.Error("SQL Error", zap.Error(err))
		}
	case l.slow > 0 && elapsed > l.slow:
		if l.level >= gormlogger.Warn {
			log.Warn("SLOW SQL", zap.Duration("threshold", l.slow))
		}
	case l.level >= gormlogger.Info:
		log.Debug("SQL Query")
	}
}

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
	"debug":  gormlogger.Info,
}

// MapGormLogLevel converts a log.level value to GORM's scale, defaulting to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	if lvl, ok := gormLevels[strings.ToLower(level)]; ok {
		return lvl
	}
	return gormlogger.Warn
}
