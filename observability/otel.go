package observability

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

type Config struct {
	Enable bool
	// Exporter selects the backend: "http" (otlp), "prometheus" (metrics
	// scraped via the status server) or stdout when unset.
	Exporter string
	// http endpoint exporter
	TraceEndpoint   string
	MetricsEndpoint string
	// secure endpoint (https)
	Secure bool
}

// Init configures OpenTelemetry for the process. It returns a shutdown
// function that must be called on application exit.
func Init(ctx context.Context, serviceName string, cfg Config) (shutdown func(context.Context) error) {
	noopShutdown := func(context.Context) error { return nil }
	if !cfg.Enable {
		slog.Info("observability is disabled")
		return noopShutdown
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		slog.Error("failed to create otel resource", "error", err)
		return noopShutdown
	}

	// --- TRACER PROVIDER ---
	var traceExporter trace.SpanExporter
	switch cfg.Exporter {
	case "http":
		slog.Info("initializing otlp trace exporter", "endpoint", cfg.TraceEndpoint)

		otlpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.TraceEndpoint)}
		if !cfg.Secure {
			otlpOpts = append(otlpOpts, otlptracehttp.WithInsecure())
		}
		traceExporter, err = otlptracehttp.New(ctx, otlpOpts...)
		if err != nil {
			slog.Error("failed to create otlp http trace exporter", "error", err)
			return noopShutdown
		}

	default:
		traceExporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			slog.Error("failed to create trace exporter", "error", err)
			return noopShutdown
		}
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	// --- METER PROVIDER ---
	var meterProvider *metric.MeterProvider
	switch cfg.Exporter {
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.MetricsEndpoint)}
		if !cfg.Secure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		metricExporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			slog.Error("failed to create otlp http metric exporter", "error", err)
			return noopShutdown
		}
		meterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter)),
			metric.WithResource(res),
		)

	case "prometheus":
		exporter, err := otelprom.New()
		if err != nil {
			slog.Error("failed to create prometheus exporter", "error", err)
			return noopShutdown
		}
		meterProvider = metric.NewMeterProvider(
			metric.WithReader(exporter),
			metric.WithResource(res),
		)

	default:
		metricExporter, err := stdoutmetric.New()
		if err != nil {
			slog.Error("failed to create metric exporter", "error", err)
			return noopShutdown
		}
		meterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter)),
			metric.WithResource(res),
		)
	}
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.TraceContext{})
	slog.Info("observability initialized", "exporter", cfg.Exporter)

	return func(ctx context.Context) error {
		slog.Info("shutting down observability providers...")
		var shutdownErr error
		if err := tracerProvider.Shutdown(ctx); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
		if err := meterProvider.Shutdown(ctx); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
		return shutdownErr
	}
}
