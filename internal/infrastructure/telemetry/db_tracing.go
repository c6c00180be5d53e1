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
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables; dev only
	SlowQueryThresh time.Duration // default: 200ms
	DBSystem        string        // default: "postgresql"
}

// DBTracingPlugins returns the gorm plugins installed on every compiled
// tenant model: otelgorm spans plus slow-query and error annotation.
// It returns nil when tracing is disabled.
func DBTracingPlugins(cfg DBTracingConfig, logger *zap.Logger) []gorm.Plugin {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return []gorm.Plugin{
		otelgorm.NewPlugin(opts...),
		&SlowQueryPlugin{threshold: cfg.SlowQueryThresh, logger: logger},
	}
}

type queryStartKey struct{}

// SlowQueryPlugin annotates the active span with rows affected, errors, and a
// slow_query event when a statement exceeds the threshold.
type SlowQueryPlugin struct {
	threshold time.Duration
	logger    *zap.Logger
}

// NewSlowQueryPlugin creates a SlowQueryPlugin
func NewSlowQueryPlugin(threshold time.Duration, logger *zap.Logger) *SlowQueryPlugin {
	return &SlowQueryPlugin{threshold: threshold, logger: logger}
}

// Name implements gorm.Plugin
func (p *SlowQueryPlugin) Name() string {
	return "ledger:slow_query"
}

// Initialize implements gorm.Plugin
func (p *SlowQueryPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("ledger_timing:before_create", p.before) },
		func() error { return cb.Query().Before("gorm:query").Register("ledger_timing:before_query", p.before) },
		func() error { return cb.Update().Before("gorm:update").Register("ledger_timing:before_update", p.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("ledger_timing:before_delete", p.before) },
		func() error { return cb.Row().Before("gorm:row").Register("ledger_timing:before_row", p.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("ledger_timing:before_raw", p.before) },
		func() error { return cb.Create().After("gorm:create").Register("ledger_timing:after_create", p.after) },
		func() error { return cb.Query().After("gorm:query").Register("ledger_timing:after_query", p.after) },
		func() error { return cb.Update().After("gorm:update").Register("ledger_timing:after_update", p.after) },
		func() error { return cb.Delete().After("gorm:delete").Register("ledger_timing:after_delete", p.after) },
		func() error { return cb.Row().After("gorm:row").Register("ledger_timing:after_row", p.after) },
		func() error { return cb.Raw().After("gorm:raw").Register("ledger_timing:after_raw", p.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *SlowQueryPlugin) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *SlowQueryPlugin) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	recording := span.IsRecording()
	if recording {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		if db.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
		}
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, db.Error.Error())
			span.RecordError(db.Error)
		}
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.threshold {
		if recording {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.threshold.Milliseconds()),
			))
		}
		if p.logger != nil {
			p.logger.Warn("slow query",
				zap.String("table", db.Statement.Table),
				zap.Duration("elapsed", elapsed),
			)
		}
	}
}
