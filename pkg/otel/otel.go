// Package otel configures the global OpenTelemetry tracer provider.
package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const exporterTimeout = 5 * time.Second

var tracer trace.Tracer

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs an OTLP/HTTP exporter that sends spans to collectorURL (host:port).
// An empty collectorURL leaves tracing disabled. Exporter errors are logged and never fail startup.
func Setup(ctx context.Context, logger *zap.Logger, serviceName, collectorURL string) (ShutdownFunc, error) {
	if collectorURL == "" {
		logger.Info("tracing_disabled")
		return noopShutdown, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	connCtx, cancel := context.WithTimeout(ctx, exporterTimeout)
	defer cancel()

	exporter, err := otlptracehttp.New(connCtx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(collectorURL),
	)
	if err != nil {
		logger.Error("otlp_exporter_unavailable", zap.String("collector", collectorURL), zap.Error(err))
		return noopShutdown, nil
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	tracer = provider.Tracer(serviceName)
	logger.Info("tracing_enabled", zap.String("collector", collectorURL))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, exporterTimeout)
		defer cancel()
		return provider.Shutdown(ctx)
	}, nil
}

// GetTracer returns the service tracer, or a no-op tracer when Setup has not enabled tracing.
func GetTracer() trace.Tracer {
	if tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return tracer
}
