package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestSetupTracer_RecordsSpansWithoutExporter(t *testing.T) {
	ctx := context.Background()
	shutdown, err := SetupTracer(ctx, "shoes_shop-test", "")
	require.NoError(t, err)
	defer func() { assert.NoError(t, shutdown(ctx)) }()

	spanCtx, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(spanCtx, carrier)
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())
}

func TestStripScheme(t *testing.T) {
	assert.Equal(t, "collector:4317", stripScheme("http://collector:4317"))
	assert.Equal(t, "collector:4317", stripScheme("https://collector:4317"))
	assert.Equal(t, "collector:4317", stripScheme("collector:4317"))
}
