package nats

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNATSHeaderCarrier_RoundTripsTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	prop := propagation.TraceContext{}
	header := make(nats.Header)
	prop.Inject(ctx, NATSHeaderCarrier(header))

	require.NotEmpty(t, header.Get("traceparent"))
	assert.Len(t, NATSHeaderCarrier(header).Keys(), 1)

	extracted := prop.Extract(context.Background(), NATSHeaderCarrier(header))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}
