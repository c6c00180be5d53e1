package telemetry

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "ledgercore"}, zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application name")
}

func TestProfiler_ProfileTypes(t *testing.T) {
	p := &Profiler{config: ProfilerConfig{ProfileCPU: true, ProfileMutex: true}}
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, p.profileTypes())

	assert.Empty(t, (&Profiler{}).profileTypes())
}

func TestWithProfilingLabels(t *testing.T) {
	var tenant, operation string
	var hasTenant bool
	WithProfilingLabels(context.Background(), "t-1", "activate", func(ctx context.Context) {
		tenant, hasTenant = pprof.Label(ctx, ProfilingLabelTenantID)
		operation, _ = pprof.Label(ctx, ProfilingLabelOperation)
	})
	assert.True(t, hasTenant)
	assert.Equal(t, "t-1", tenant)
	assert.Equal(t, "activate", operation)

	WithProfilingLabels(context.Background(), "", "health", func(ctx context.Context) {
		_, hasTenant = pprof.Label(ctx, ProfilingLabelTenantID)
	})
	assert.False(t, hasTenant)
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	disabled := &TracerProvider{logger: zap.NewNop()}
	disabled.EnableSpanProfiles()
	assert.False(t, disabled.SpanProfilesEnabled())

	sdk := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
	tp := &TracerProvider{provider: sdk, logger: zap.NewNop(), config: Config{Enabled: true}}
	tp.EnableSpanProfiles()
	tp.EnableSpanProfiles()
	assert.True(t, tp.SpanProfilesEnabled())
	assert.NotSame(t, sdk, otel.GetTracerProvider())
}
