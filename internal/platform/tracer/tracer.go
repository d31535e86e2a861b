package tracer

import (
	"context"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
)

// InitTracer installs the global W3C propagator and a tracer provider for serviceName.
// Spans are exported over OTLP gRPC when otlpEndpoint is set; otherwise they are only
// created and propagated.
func InitTracer(serviceName, otlpEndpoint string, appLogger *logger.Logger) *sdktrace.TracerProvider {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(serviceResource(serviceName, appLogger))}
	if exporter := newExporter(otlpEndpoint, appLogger); exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp
}

func newExporter(endpoint string, appLogger *logger.Logger) sdktrace.SpanExporter {
	if endpoint == "" {
		appLogger.Info("OpenTelemetry export disabled: OTEL_EXPORTER_OTLP_ENDPOINT is not set")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		appLogger.Error("Failed to create OTLP trace exporter, spans will not be exported",
			zap.String("endpoint", endpoint), zap.Error(err))
		return nil
	}
	appLogger.Info("OpenTelemetry exporter initialized", zap.String("otlp_endpoint", endpoint))
	return exporter
}

// serviceResource is schemaless so it merges with the SDK default whatever semconv version that uses.
func serviceResource(serviceName string, appLogger *logger.Logger) *resource.Resource {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		appLogger.Warn("Failed to merge OpenTelemetry resource, using default", zap.Error(err))
		return resource.Default()
	}
	return res
}
