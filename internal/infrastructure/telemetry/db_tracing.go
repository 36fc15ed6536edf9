package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jobboard/backend/internal/infrastructure/config"
)

// DefaultSlowQueryThreshold marks spans of queries slower than this
const DefaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// DBTracing registers otelgorm plus a callback pair that annotates each
// query span with table, rows affected and a slow-query flag.
type DBTracing struct {
	enabled    bool
	logFullSQL bool
	dbSystem   string
	slowAfter  time.Duration
	logger     *zap.Logger
}

// NewDBTracing configures database tracing for the given driver
func NewDBTracing(cfg config.TelemetryConfig, driver string, logger *zap.Logger) *DBTracing {
	return &DBTracing{
		enabled:    cfg.Enabled && cfg.DBTraceEnabled,
		logFullSQL: cfg.DBLogFullSQL,
		dbSystem:   dbSystemFor(driver),
		slowAfter:  DefaultSlowQueryThreshold,
		logger:     logger,
	}
}

func dbSystemFor(driver string) string {
	switch driver {
	case config.DriverMySQL:
		return "mysql"
	case config.DriverSQLite:
		return "sqlite"
	default:
		return "postgresql"
	}
}

// Register installs the plugin and callbacks on db. It is a no-op when disabled.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.enabled {
		t.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(t.dbSystem)}
	if !t.logFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
		}
	}

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("trace_timing:before_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("trace_timing:before_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("trace_timing:before_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("trace_timing:before_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register("trace_timing:before_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("trace_timing:before_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("trace_timing:after_create", t.after) },
		func() error { return cb.Query().After("gorm:query").Register("trace_timing:after_query", t.after) },
		func() error { return cb.Update().After("gorm:update").Register("trace_timing:after_update", t.after) },
		func() error { return cb.Delete().After("gorm:delete").Register("trace_timing:after_delete", t.after) },
		func() error { return cb.Row().After("gorm:row").Register("trace_timing:after_row", t.after) },
		func() error { return cb.Raw().After("gorm:raw").Register("trace_timing:after_raw", t.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}

	t.logger.Info("Database tracing enabled",
		zap.String("db_system", t.dbSystem),
		zap.Bool("log_full_sql", t.logFullSQL),
		zap.Duration("slow_query_threshold", t.slowAfter),
	)
	return nil
}

func (t *DBTracing) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > t.slowAfter {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}
