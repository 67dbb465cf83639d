package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mjolner/svc-commerce-events/internal/adapters/middleware"
	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/vault/api"
)

type (
	Applications struct {
		Users     *usecases.UsersApplication
		Orders    *usecases.OrdersApplication
		Publisher *usecases.PublisherApplication
		Consumer  *usecases.ConsumerApplication
		Relay     *usecases.RelayApplication
	}

	ApplicationWorkers struct {
		OutboxDrainer ports.BackgroundProcessor
		ExpiryScanner ports.BackgroundProcessor
	}

	// queueConsumer binds a message handler to the broker queue it drains.
	queueConsumer struct {
		queueName string
		tag       string
		prefetch  int
		handler   ports.MessageHandler
	}

	TracerShutdownFunc func(ctx context.Context) error

	InfrastructureDeps struct {
		HTTPServer          *http.Server
		SecretStorageClient *api.Client
		StorageClient       *infrastructure.Storage
		QueueClient         infrastructure.Queue
		CacheClient         *infrastructure.KeydbClient
		Metrics             infrastructure.Metrics
	}

	Repos struct {
		SecretStorageRepo ports.SecretsRepository
		UserRepo          ports.UserRepository
		OrderRepo         ports.OrderRepository
		OutboxRepo        ports.OutboxRepository
		CacheRepo         ports.CacheRepository
	}

	Dependencies struct {
		Apps    Applications
		Workers ApplicationWorkers

		cfg          *config.ServiceConfig
		configLoader *config.Loader

		logger infrastructure.Logger

		Infra InfrastructureDeps
		Repos Repos

		consumers []queueConsumer

		tracerShutdownFunc TracerShutdownFunc
		secretVersion      uint
	}
)

func initializeDependencies(ctx context.Context, opts ...DependencyOption) (*Dependencies, error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, fmt.Errorf("unable to load service configuration: %w", err)
	}

	appLogger := infrastructure.NewLogger(cfg.Logging, cfg.AppConfig)

	appLogger.Info().Msg("initializing dependencies...")

	deps := &Dependencies{
		cfg:    cfg,
		logger: appLogger,
	}

	// Start with default options and append any additional options.
	options := append(defaultOptions(ctx), opts...)

	for _, opt := range options {
		if err := opt(deps); err != nil {
			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	deps.logger.Info().Msg("dependencies initialized successfully")

	return deps, nil
}

// initHTTPServer wraps the role's router in an http.Server. Streaming roles
// get no write deadline: an SSE response is never supposed to finish.
func initHTTPServer(
	cfg *config.ServiceConfig,
	logger infrastructure.Logger,
	handler http.Handler,
	streaming bool,
) *http.Server {
	writeTimeout := cfg.HTTPServer.WriteTimeout
	if streaming {
		writeTimeout = 0
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTPServer.Host, fmt.Sprintf("%d", cfg.HTTPServer.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	logger.Info().Str("addr", server.Addr).Msg("HTTP server created")

	return server
}

func initMiddlewares(
	cfg *config.ServiceConfig,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
	streaming bool,
) []func(http.Handler) http.Handler {
	middlewares := []func(http.Handler) http.Handler{
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.NewAPIVersionMiddleware(cfg.AppConfig.APIVersion).Middleware,
		middleware.Tracer(),
	}

	if !streaming {
		middlewares = append(middlewares, chimiddleware.Timeout(cfg.HTTPServer.WriteTimeout))
	}

	if cfg.Telemetry.Metrics.Enabled {
		metricsMiddleware := middleware.NewMetricsMiddleware(metrics)
		middlewares = append(middlewares, metricsMiddleware.Middleware)
		logger.Info().Msg("HTTP metrics collection enabled")
	}

	if cfg.Logging.AccessLog.Enabled {
		healthFilter := middleware.NewHealthCheckFilter(cfg.Logging.AccessLog.LogHealthChecks)
		accessLogger := middleware.NewAccessLogger(logger.Logger)

		middlewares = append(middlewares, healthFilter.Middleware, accessLogger.Middleware)
		logger.Info().
			Bool("log_health_checks", cfg.Logging.AccessLog.LogHealthChecks).
			Msg("structured access logging enabled")
	}

	if cfg.ThrottledRateLimiting.Enabled {
		rateLimitMiddleware := middleware.NewThrottledRateLimitingMiddleware(cfg.ThrottledRateLimiting, logger)

		middlewares = append(middlewares, rateLimitMiddleware.Middleware)
		logger.Info().Msg("rate limiting enabled")
	}

	return middlewares
}

// startBackgroundWorkers launches every configured background processor. A
// worker that dies for any reason other than shutdown stops the whole
// process; the orchestrator restart is cleaner than limping along without a
// drainer.
func startBackgroundWorkers(ctx context.Context, deps *Dependencies, stop context.CancelFunc) {
	workers := []struct {
		name string
		proc ports.BackgroundProcessor
	}{
		{"outbox-drainer", deps.Workers.OutboxDrainer},
		{"expiry-scanner", deps.Workers.ExpiryScanner},
	}

	for _, worker := range workers {
		if worker.proc == nil {
			continue
		}

		go func(name string, proc ports.BackgroundProcessor) {
			deps.logger.Info().Str("worker", name).Msg("starting background worker")

			if err := proc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				deps.logger.Error().Err(err).Str("worker", name).Msg("background worker failed")
				stop()
			}
		}(worker.name, worker.proc)
	}
}

// startQueueConsumers launches every registered consumer binding against the
// broker connection.
func startQueueConsumers(ctx context.Context, deps *Dependencies, stop context.CancelFunc) {
	for _, consumer := range deps.consumers {
		go func(qc queueConsumer) {
			deps.logger.Info().
				Str("queue", qc.queueName).
				Str("consumer", qc.tag).
				Msg("starting queue consumer")

			err := deps.Infra.QueueClient.Consume(ctx, qc.queueName, qc.tag, qc.handler.ProcessMessage,
				queue.WithPrefetchCount(qc.prefetch),
				queue.WithConsumingLogger(infrastructure.NewQueueLogger(deps.logger)),
				queue.WithErrorHandler(func(err error) {
					deps.logger.Error().Err(err).Str("consumer", qc.tag).Msg("consumer error")
				}),
			)

			if err != nil && !errors.Is(err, context.Canceled) {
				deps.logger.Error().Err(err).Str("consumer", qc.tag).Msg("queue consumer failed")
				stop()
			}
		}(consumer)
	}
}
