package observe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gnome-horoscope/gnome-bridge/internal/config"
	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops the telemetry pipeline.
type ShutdownFunc func(context.Context) error

// Configure sets up the global trace and metric providers. When telemetry is
// disabled the globals are left as no-ops and the returned shutdown does
// nothing.
func Configure(ctx context.Context, cfg config.ObserveConfig) (ShutdownFunc, error) {
	configureSDKLogging(cfg.SDKLogLevel)

	if !cfg.Enabled {
		log.Info().Msg("telemetry: disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource creation failed: %w", err)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var shutdowns []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}

	traceExporter, err := newTraceExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter,
			sdktrace.WithBatchTimeout(time.Duration(cfg.TraceBatchTimeoutSeconds)*time.Second),
		),
	)
	otel.SetTracerProvider(tracerProvider)
	shutdowns = append(shutdowns, tracerProvider.Shutdown)

	if cfg.MetricsEnabled {
		metricExporter, err := newMetricExporter(ctx, cfg)
		if err != nil {
			return nil, errors.Join(err, shutdown(ctx))
		}

		meterProvider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(time.Duration(cfg.MetricReadIntervalSeconds)*time.Second),
			)),
		)
		otel.SetMeterProvider(meterProvider)
		shutdowns = append(shutdowns, meterProvider.Shutdown)
	}

	log.Info().
		Str("type", cfg.Type).
		Str("service", cfg.ServiceName).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("telemetry: configured")

	return shutdown, nil
}

func newTraceExporter(ctx context.Context, cfg config.ObserveConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Type {
	case "grpc":
		return otlptracegrpc.New(ctx)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown telemetry type %q: must be grpc or stdout", cfg.Type)
	}
}

func newMetricExporter(ctx context.Context, cfg config.ObserveConfig) (sdkmetric.Exporter, error) {
	switch cfg.Type {
	case "grpc":
		return otlpmetricgrpc.New(ctx)
	case "stdout":
		return stdoutmetric.New()
	default:
		return nil, fmt.Errorf("unknown telemetry type %q: must be grpc or stdout", cfg.Type)
	}
}

// configureSDKLogging routes the SDK's internal logs and errors through
// zerolog at the given level.
func configureSDKLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	sdkLog := log.Logger.Level(lvl).With().Str("component", "otel").Logger()

	var logger logr.Logger = zerologr.New(&sdkLog)
	otel.SetLogger(logger)

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		sdkLog.Warn().Err(err).Msg("telemetry: SDK error")
	}))
}
