package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/codedrop/relay/internal/config"
	"github.com/codedrop/relay/internal/infrastructure/metrics"
)

const (
	meterName      = "github.com/codedrop/relay"
	exportInterval = 30 * time.Second
)

// Shutdown is a function that releases telemetry resources.
type Shutdown func(ctx context.Context) error

// Setup installs the global tracer and meter providers and registers the
// relay instruments. Spans and metrics leave the process only when tracing
// is enabled and an OTLP endpoint is configured.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Shutdown, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		attribute.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if exporting(cfg) {
		endpoint, insecure := normalizeEndpoint(cfg.OTLPEndpoint)
		spans, readers, err := newExporters(ctx, endpoint, insecure)
		if err != nil {
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spans), sdktrace.WithSampler(sdktrace.AlwaysSample()))
		meterOpts = append(meterOpts, sdkmetric.WithReader(readers))
		log.Info().Str("endpoint", endpoint).Bool("insecure", insecure).Msg("otlp export enabled")
	} else {
		log.Info().Msg("otlp export disabled, telemetry stays in process")
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	meterProvider := sdkmetric.NewMeterProvider(meterOpts...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := metrics.RegisterOTel(meterProvider.Meter(meterName)); err != nil {
		return nil, fmt.Errorf("register otel instruments: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}, nil
}

func exporting(cfg *config.Config) bool {
	return cfg.EnableTracing && strings.TrimSpace(cfg.OTLPEndpoint) != ""
}

func newExporters(ctx context.Context, endpoint string, insecure bool) (sdktrace.SpanExporter, sdkmetric.Reader, error) {
	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spans, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}
	return spans, sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(exportInterval)), nil
}

// normalizeEndpoint strips the scheme the OTLP HTTP exporters do not accept
// and reports whether plain HTTP should be used.
func normalizeEndpoint(raw string) (string, bool) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimPrefix(raw, "https://"), false
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimPrefix(raw, "http://"), true
	default:
		return raw, true
	}
}
