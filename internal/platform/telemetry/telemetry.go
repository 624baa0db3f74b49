package telemetry

import (
	"context"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName identifies tracers and meters created by this service.
const InstrumentationName = "github.com/phrazzld/mnemo-api"

// Provider bundles the tracer and meter providers used by the application.
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdown func(context.Context) error
}

// Setup creates the application's telemetry providers from cfg and installs
// them as the OpenTelemetry globals. Metrics go to whatever meter provider is
// globally registered, which is a no-op unless the host process installs one.
func Setup(cfg config.TelemetryConfig, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		MeterProvider: otel.GetMeterProvider(),
		shutdown:      func(context.Context) error { return nil },
	}

	if !cfg.TracingEnabled {
		p.TracerProvider = noop.NewTracerProvider()
		return p
	}

	res := resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(NewLogSpanExporter(logger))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	p.TracerProvider = tp
	p.shutdown = tp.Shutdown

	logger.Info("tracing enabled", slog.String("service_name", cfg.ServiceName))
	return p
}

// Tracer returns the application tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.TracerProvider.Tracer(InstrumentationName)
}

// Meter returns the application meter.
func (p *Provider) Meter() metric.Meter {
	return p.MeterProvider.Meter(InstrumentationName)
}

// Shutdown flushes and stops the tracer provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
