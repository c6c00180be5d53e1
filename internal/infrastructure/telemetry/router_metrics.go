package telemetry

import (
	"context"
	"database/sql"

	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"go.opentelemetry.io/otel/metric"
)

// RouterStatsSource exposes model cache counters
type RouterStatsSource interface {
	Stats() tenant.Stats
}

// RegisterRouterMetrics publishes tenant model cache counters and, when pool
// is non-nil, the shared connection pool state as observable instruments.
// The returned registration must be unregistered on shutdown.
func RegisterRouterMetrics(meter metric.Meter, router RouterStatsSource, pool *sql.DB) (metric.Registration, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	cacheEvents, err := meter.Int64ObservableCounter("ledger_tenant_model_cache_events_total",
		metric.WithDescription("Tenant model cache hits, misses, compiles and evictions"),
		metric.WithUnit("{events}"))
	if err != nil {
		return nil, err
	}
	cached, err := meter.Int64ObservableGauge("ledger_tenant_models_cached",
		metric.WithDescription("Compiled tenant models currently cached"),
		metric.WithUnit("{models}"))
	if err != nil {
		return nil, err
	}
	connections, err := meter.Int64ObservableGauge("ledger_db_pool_connections",
		metric.WithDescription("Shared pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := router.Stats()
		o.ObserveInt64(cacheEvents, int64(s.Hits), metric.WithAttributes(AttrCacheEvent.String("hit")))
		o.ObserveInt64(cacheEvents, int64(s.Misses), metric.WithAttributes(AttrCacheEvent.String("miss")))
		o.ObserveInt64(cacheEvents, int64(s.Compiles), metric.WithAttributes(AttrCacheEvent.String("compile")))
		o.ObserveInt64(cacheEvents, int64(s.Evictions), metric.WithAttributes(AttrCacheEvent.String("eviction")))
		o.ObserveInt64(cached, int64(s.Cached))

		if pool != nil {
			ps := pool.Stats()
			o.ObserveInt64(connections, int64(ps.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
			o.ObserveInt64(connections, int64(ps.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		}
		return nil
	}, cacheEvents, cached, connections)
}
