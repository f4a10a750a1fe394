package tracing

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config selects the span exporter for the service.
type Config struct {
	ServiceName string
	// Exporter is "otlp", "console" or "" (tracing disabled).
	Exporter string
	OTLP     exporters.OTLPConfig
	// Logger receives spans from the console exporter.
	Logger ectologger.Logger
}

// Setup installs a global tracer provider and returns its shutdown function.
// With no exporter configured tracing stays disabled and StartSpan is a no-op.
func Setup(ctx context.Context, config Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	switch config.Exporter {
	case "":
		return func(context.Context) error { return nil }, nil
	case "console":
		exporter = &exporters.ConsoleExporter{Logger: config.Logger}
	case "otlp":
		otlpExporter, err := exporters.NewOTLP(ctx, config.OTLP)
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		exporter = otlpExporter
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s (use 'otlp' or 'console')", config.Exporter)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", config.ServiceName))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	setTracer(provider.Tracer(config.ServiceName))

	return provider.Shutdown, nil
}
