package infrastructure

import (
	"context"
	"fmt"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InitGlobalTracer installs the global tracer provider and returns its shutdown hook.
func InitGlobalTracer(ctx context.Context, telemetry config.Telemetry, appCfg config.AppConfig) (func(context.Context) error, error) {
	if !telemetry.Traces.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newTraceExporter(ctx, telemetry)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(appCfg.ServiceName),
			semconv.ServiceVersionKey.String(appCfg.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(appCfg.CommitSHA),
			semconv.DeploymentEnvironmentKey.String(appCfg.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(telemetry.Traces.SamplerRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}

func newTraceExporter(ctx context.Context, telemetry config.Telemetry) (sdktrace.SpanExporter, error) {
	switch telemetry.ExporterType {
	case "stdout":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}

		return exporter, nil
	case "grpc":
		endpoint := fmt.Sprintf("%s:%s", telemetry.OtelGRPCHost, telemetry.OtelGRPCPort)

		conn, err := grpc.NewClient(
			endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
		}

		exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithGRPCConn(conn)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

		return exporter, nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter type: %q", telemetry.ExporterType)
	}
}
