package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartServiceSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartServiceSpan(context.Background(), "document", "activate",
		SpanAttrDocumentNumber, "FAC000001", SpanAttrAttempt, 2, 42)
	SetAttributes(span, "rows", int64(3))
	AddEvent(span, "registry_written", "rows", 3)
	RecordError(span, errors.New("boom"))
	RecordError(span, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]
	assert.Equal(t, "document.activate", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Len(t, got.Events(), 2) // registry_written + exception

	attrs := map[string]string{}
	for _, kv := range got.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "FAC000001", attrs[SpanAttrDocumentNumber])
	assert.Equal(t, "2", attrs[SpanAttrAttempt])
	assert.Equal(t, "3", attrs["rows"])
}
