package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	metricsNamespace = "commerce_events"
)

type (
	Metrics interface {
		RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64)
		RecordCommand(ctx context.Context, command string, duration time.Duration, success bool)
		RecordOutboxPublish(ctx context.Context, eventType string, outcome string)
		RecordDeadLetter(ctx context.Context, eventType string)
		RecordConsumedEvent(ctx context.Context, topic string, outcome string)
		RecordExpiredOrders(ctx context.Context, count int64)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	OTELMetrics struct {
		meterProvider *sdkmetric.MeterProvider
		meter         metric.Meter
		logger        Logger

		httpRequestTotal    metric.Int64Counter
		httpRequestDuration metric.Float64Histogram
		httpRequestSize     metric.Int64Histogram
		httpResponseSize    metric.Int64Histogram
		commandTotal        metric.Int64Counter
		commandDuration     metric.Float64Histogram
		outboxPublishTotal  metric.Int64Counter
		deadLetterTotal     metric.Int64Counter
		consumedEventTotal  metric.Int64Counter
		expiredOrdersTotal  metric.Int64Counter
	}
)

func NewMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (Metrics, error) {
	if !cfg.Telemetry.Metrics.Enabled {
		logger.Info().Msg("metrics disabled, using NoOp implementation")

		return &NoOpMetrics{}, nil
	}

	return NewOTELMetrics(ctx, cfg, logger)
}

func NewOTELMetrics(ctx context.Context, cfg config.ServiceConfig, logger Logger) (*OTELMetrics, error) {
	endpoint := fmt.Sprintf("%s:%s", cfg.Telemetry.OtelGRPCHost, cfg.Telemetry.OtelGRPCPort)

	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTEL collector: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppConfig.ServiceName),
			semconv.ServiceVersionKey.String(cfg.AppConfig.ServiceVersion),
			semconv.ServiceInstanceIDKey.String(cfg.AppConfig.CommitSHA),
			semconv.DeploymentEnvironmentKey.String(cfg.AppConfig.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		metricsNamespace,
		metric.WithInstrumentationVersion(cfg.AppConfig.ServiceVersion),
	)

	provider := &OTELMetrics{
		meterProvider: meterProvider,
		meter:         meter,
		logger:        logger,
	}

	if err := provider.initializeMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info().
		Str("otel_endpoint", endpoint).
		Msg("OTEL metrics provider initialized successfully")

	return provider, nil
}

func (om *OTELMetrics) initializeMetrics() error {
	var err error

	om.httpRequestTotal, err = om.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	om.httpRequestDuration, err = om.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	om.httpRequestSize, err = om.meter.Int64Histogram(
		"http_request_size_bytes",
		metric.WithDescription("HTTP request size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_request_size_bytes histogram: %w", err)
	}

	om.httpResponseSize, err = om.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("failed to create http_response_size_bytes histogram: %w", err)
	}

	om.commandTotal, err = om.meter.Int64Counter(
		"commands_total",
		metric.WithDescription("Total number of write commands handled"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create commands_total counter: %w", err)
	}

	om.commandDuration, err = om.meter.Float64Histogram(
		"command_duration_seconds",
		metric.WithDescription("Command handling duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create command_duration_seconds histogram: %w", err)
	}

	om.outboxPublishTotal, err = om.meter.Int64Counter(
		"outbox_publishes_total",
		metric.WithDescription("Total number of outbox delivery attempts by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox_publishes_total counter: %w", err)
	}

	om.deadLetterTotal, err = om.meter.Int64Counter(
		"dead_letters_total",
		metric.WithDescription("Total number of events routed to the dead-letter topic"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create dead_letters_total counter: %w", err)
	}

	om.consumedEventTotal, err = om.meter.Int64Counter(
		"consumed_events_total",
		metric.WithDescription("Total number of bus events consumed by outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create consumed_events_total counter: %w", err)
	}

	om.expiredOrdersTotal, err = om.meter.Int64Counter(
		"expired_orders_total",
		metric.WithDescription("Total number of orders expired by the scanner"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create expired_orders_total counter: %w", err)
	}

	return nil
}

func (om *OTELMetrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	om.httpRequestTotal.Add(ctx, 1,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)

	om.httpRequestDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)

	om.httpRequestSize.Record(ctx, requestSize,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
		),
	)

	om.httpResponseSize.Record(ctx, responseSize,
		metric.WithAttributes(
			HTTPMethodAttr(method),
			HTTPPathAttr(path),
			HTTPStatusCodeAttr(statusCode),
		),
	)
}

func (om *OTELMetrics) RecordCommand(ctx context.Context, command string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	om.commandTotal.Add(ctx, 1,
		metric.WithAttributes(
			CommandAttr(command),
			StatusAttr(status),
		),
	)

	om.commandDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			CommandAttr(command),
			StatusAttr(status),
		),
	)
}

func (om *OTELMetrics) RecordOutboxPublish(ctx context.Context, eventType string, outcome string) {
	om.outboxPublishTotal.Add(ctx, 1,
		metric.WithAttributes(
			EventTypeAttr(eventType),
			OutcomeAttr(outcome),
		),
	)
}

func (om *OTELMetrics) RecordDeadLetter(ctx context.Context, eventType string) {
	om.deadLetterTotal.Add(ctx, 1,
		metric.WithAttributes(
			EventTypeAttr(eventType),
		),
	)
}

func (om *OTELMetrics) RecordConsumedEvent(ctx context.Context, topic string, outcome string) {
	om.consumedEventTotal.Add(ctx, 1,
		metric.WithAttributes(
			TopicAttr(topic),
			OutcomeAttr(outcome),
		),
	)
}

func (om *OTELMetrics) RecordExpiredOrders(ctx context.Context, count int64) {
	om.expiredOrdersTotal.Add(ctx, count)
}

func (om *OTELMetrics) Handler() http.Handler {
	return promhttp.Handler()
}

func (om *OTELMetrics) Shutdown(ctx context.Context) error {
	if err := om.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}

	return nil
}
