package telemetry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestLedgerMetrics_Record(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID, definitionID := uuid.New(), uuid.New()
	m.RecordNumberIssued(ctx, tenantID, definitionID)
	m.RecordNumberIssued(ctx, tenantID, definitionID)
	m.RecordNumberConflict(ctx, tenantID)
	m.RecordDocumentActivated(ctx, tenantID, "SALES", "STOCK_OUT", 3, 12*time.Millisecond)
	m.RecordSessionClosed(ctx, tenantID, "WARNING")
	m.RecordVarianceAlert(ctx, tenantID, "WARNING")

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["ledger_document_numbers_issued_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger_document_number_conflicts_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger_documents_activated_total"]))
	assert.Equal(t, int64(3), sumOf(t, got["ledger_registry_rows_written_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger_cash_sessions_closed_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["ledger_cash_variance_alerts_total"]))
	assert.Contains(t, got, "ledger_document_activation_duration_seconds")
}

func TestLedgerMetrics_NilReceiver(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.RecordNumberIssued(context.Background(), uuid.New(), uuid.New())
		m.RecordDocumentActivated(context.Background(), uuid.New(), "SALES", "STOCK_OUT", 1, time.Millisecond)
		m.RecordVarianceAlert(context.Background(), uuid.New(), "CRITICAL")
	})
}

type fakeRouterStats struct {
	stats tenant.Stats
}

func (f fakeRouterStats) Stats() tenant.Stats { return f.stats }

func TestRegisterRouterMetrics(t *testing.T) {
	reader, provider := newTestMeter(t)
	source := fakeRouterStats{stats: tenant.Stats{Hits: 10, Misses: 3, Compiles: 3, Evictions: 1, Cached: 2}}

	reg, err := RegisterRouterMetrics(provider.Meter("test"), source, (*sql.DB)(nil))
	require.NoError(t, err)
	defer func() { _ = reg.Unregister() }()

	got := collect(t, reader)
	events := got["ledger_tenant_model_cache_events_total"].Data.(metricdata.Sum[int64])
	byEvent := map[string]int64{}
	for _, dp := range events.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("cache.event"))
		byEvent[v.AsString()] = dp.Value
	}
	assert.Equal(t, int64(10), byEvent["hit"])
	assert.Equal(t, int64(1), byEvent["eviction"])

	cached := got["ledger_tenant_models_cached"].Data.(metricdata.Gauge[int64])
	require.Len(t, cached.DataPoints, 1)
	assert.Equal(t, int64(2), cached.DataPoints[0].Value)
}

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, log)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, Config{Enabled: false}, log)
	require.NoError(t, err)
	assert.Same(t, log, lp.Bridge(log))
	assert.NoError(t, lp.Shutdown(ctx))

	assert.Nil(t, DBTracingPlugins(DBTracingConfig{Enabled: false}, log))
	assert.Len(t, DBTracingPlugins(DBTracingConfig{Enabled: true}, log), 2)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}
