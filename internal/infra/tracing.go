package infra

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/pkg/bininfo"
	"exusiai.dev/booking-backend/internal/pkg/observability"
)

// TracingInit installs the global tracer provider. When tracing is disabled the otel no-op
// provider stays in place, so spans started by bunotel and the services cost nothing.
func TracingInit(conf *appconfig.Config, lc fx.Lifecycle) error {
	if !conf.TracingEnabled {
		return nil
	}

	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(conf.TracingSampleRate))),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(observability.ServiceName),
			semconv.ServiceVersionKey.String(bininfo.Version),
			attribute.Bool("dev", conf.DevMode),
		)),
	}

	for _, name := range conf.TracingExporters {
		switch name {
		case "otlp":
			exporter, err := otlptracegrpc.New(context.Background())
			if err != nil {
				return errors.Wrap(err, "infra: tracing: failed to create otlp exporter")
			}
			opts = append(opts, tracesdk.WithBatcher(exporter))
		case "stdout":
			exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
			if err != nil {
				return errors.Wrap(err, "infra: tracing: failed to create stdout exporter")
			}
			opts = append(opts, tracesdk.WithSyncer(exporter))
		default:
			return errors.Errorf("infra: tracing: unknown exporter %q", name)
		}
	}

	tracerProvider := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tracerProvider)
	log.Info().Strs("exporters", conf.TracingExporters).Float64("sample_rate", conf.TracingSampleRate).Msg("tracing enabled")

	lc.Append(fx.Hook{
		OnStop: tracerProvider.Shutdown,
	})

	return nil
}
