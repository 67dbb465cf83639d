package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mjolner/svc-commerce-events/internal/adapters"
	"github.com/mjolner/svc-commerce-events/internal/adapters/expiry"
	"github.com/mjolner/svc-commerce-events/internal/adapters/outbox"
	workerqueue "github.com/mjolner/svc-commerce-events/internal/adapters/queue"
	"github.com/mjolner/svc-commerce-events/internal/adapters/repos"
	"github.com/mjolner/svc-commerce-events/internal/adapters/sse"
	"github.com/mjolner/svc-commerce-events/internal/adapters/userclient"
	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/backoff"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/hashicorp/vault/api"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// Each service drains its own outbox table; the names are part of the schema,
// not of the deployment.
const (
	usersOutboxTable  = "users_outbox"
	ordersOutboxTable = "orders_outbox"
)

type (
	DependencyOption func(*Dependencies) error
)

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithSecretStorage(),
		WithSecretStorageRepo(),
		WithConfigLoader(ctx),
		WithMetrics(ctx),
		WithTracing(ctx),
	}
}

// WithSecretStorage initializes the Vault client using ENV config.
func WithSecretStorage() DependencyOption {
	return func(d *Dependencies) error {
		cfg := d.cfg.SecretStorage

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = cfg.Address
		vaultConfig.Timeout = cfg.Timeout

		if cfg.TLSSkipVerify {
			tlsConfig := &api.TLSConfig{
				Insecure: true,
			}
			if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to configure TLS: %w", err)
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("failed to create Vault client: %w", err)
		}

		// Skip namespace configuration for dev mode vault
		if cfg.Namespace != "" {
			client.SetNamespace(cfg.Namespace)
		}

		d.Infra.SecretStorageClient = client

		return nil
	}
}

func WithSecretStorageRepo() DependencyOption {
	return func(d *Dependencies) error {
		d.Repos.SecretStorageRepo = repos.NewVaultRepository(d.Infra.SecretStorageClient)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		d.configLoader = config.NewLoader(d.cfg, d.Repos.SecretStorageRepo, d.secretVersion)

		if !d.cfg.SecretStorage.Enabled {
			d.logger.Info().Msg("secret storage is disabled, skipping vault configuration loading")

			return nil
		}

		version, err := d.configLoader.Load(ctx, d.Repos.SecretStorageRepo, d.cfg)
		if err != nil {
			return fmt.Errorf("unable to load service configuration: %w", err)
		}

		d.secretVersion = version

		return nil
	}
}

func WithStorage() DependencyOption {
	return func(d *Dependencies) error {
		storage, err := infrastructure.NewStorage(d.cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}

		if _, err := storage.GetDB(); err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		d.Infra.StorageClient = storage

		return nil
	}
}

func WithCache(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		cacheClient := infrastructure.NewKeyDBClient(d.cfg.Cache, d.logger)

		cacheCtx, cancel := context.WithTimeout(ctx, d.cfg.Cache.DialTimeout)
		defer cancel()

		if err := cacheClient.Ping(cacheCtx); err != nil {
			d.logger.Error().Err(err).Msg("failed to connect to cache, continuing without cache")
			d.Infra.CacheClient = nil

			return nil
		}

		d.logger.Info().Msg("cache connection established")
		d.Infra.CacheClient = cacheClient

		return nil
	}
}

func WithDataRepos() DependencyOption {
	return func(d *Dependencies) error {
		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		d.Repos.UserRepo = repos.NewUserRepository(db)
		d.Repos.OrderRepo = repos.NewOrderRepository(db)
		d.Repos.CacheRepo = repos.NewCacheRepository(
			d.Infra.CacheClient,
			d.cfg.Cache,
			d.logger,
		)

		return nil
	}
}

func WithOutboxRepo(table string) DependencyOption {
	return func(d *Dependencies) error {
		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		d.Repos.OutboxRepo = repos.NewOutboxRepository(db, table)

		return nil
	}
}

func WithMetrics(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		metrics, err := infrastructure.NewMetrics(ctx, *d.cfg, d.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}

		d.Infra.Metrics = metrics

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if !d.cfg.Telemetry.Traces.Enabled {
			d.tracerShutdownFunc = func(_ context.Context) error {
				return nil
			}

			return nil
		}

		tracerShutdownFunc, err := infrastructure.InitGlobalTracer(ctx, d.cfg.Telemetry, d.cfg.AppConfig)
		if err != nil {
			d.logger.Error().Err(err).Msg("failed to initialize global tracer")

			return err
		}

		d.tracerShutdownFunc = tracerShutdownFunc

		return nil
	}
}

func WithQueue(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		queueClient := infrastructure.NewQueue(d.cfg.Queue, d.logger)

		if err := queueClient.ConnectWithRetry(ctx, d.cfg.Queue.ConnectAttempts); err != nil {
			return fmt.Errorf("failed to connect to queue: %w", err)
		}

		// Publishers and consumers both assume the topic exchange exists.
		if err := queueClient.DeclareExchange(d.cfg.Queue.ExchangeName, amqp.ExchangeTopic, true, false); err != nil {
			return fmt.Errorf("failed to declare exchange: %w", err)
		}

		d.Infra.QueueClient = queueClient

		return nil
	}
}

// WithUsersService wires the users role: the command surface, its outbox
// table, and the in-process drainer that publishes from it.
func WithUsersService(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if err := applyOptions(d, WithStorage(), WithCache(ctx), WithDataRepos(), WithOutboxRepo(usersOutboxTable), WithQueue(ctx)); err != nil {
			return err
		}

		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		userService := service.NewUserService(
			d.Repos.UserRepo,
			d.Repos.OutboxRepo,
			d.Repos.CacheRepo,
			db,
			d.logger,
			d.Infra.Metrics,
		)

		publisherService := initPublisher(d)

		d.Apps.Users = usecases.NewUsersApplication(
			userService,
			publisherService,
			d.Repos.OutboxRepo,
			adapters.NewHealthChecker(d.Infra.StorageClient, d.Infra.CacheClient, d.Infra.QueueClient),
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		router := adapters.NewUsersRouter(
			adapters.NewUsersRequestHandler(d.Apps.Users, d.logger),
			adapters.NewOutboxRequestHandler(
				d.Apps.Users.Commands.MarkOutboxSentHandler,
				d.Apps.Users.Commands.IncrementOutboxRetryHandler,
				d.Apps.Users.Queries.FetchPendingOutboxEventsQueryHandler,
				d.logger,
			),
			adapters.NewHealthRequestHandler(
				d.Apps.Users.Queries.FetchLivenessReportQueryHandler,
				d.Apps.Users.Queries.FetchReadinessReportQueryHandler,
				d.Apps.Users.Queries.FetchHealthReportQueryHandler,
				d.cfg.AppConfig.ServiceVersion,
				d.logger,
			),
			metricsHandler(d),
			initMiddlewares(d.cfg, d.logger, d.Infra.Metrics, false)...,
		)

		d.Infra.HTTPServer = initHTTPServer(d.cfg, d.logger, router, false)

		return nil
	}
}

// WithOrdersService wires the orders role: the command surface, its outbox
// table with drainer, the expiry scanner, and the consumer that reacts to
// user inactivations.
func WithOrdersService(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if err := applyOptions(d, WithStorage(), WithCache(ctx), WithDataRepos(), WithOutboxRepo(ordersOutboxTable), WithQueue(ctx)); err != nil {
			return err
		}

		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		orderService := service.NewOrderService(
			d.Repos.OrderRepo,
			d.Repos.OutboxRepo,
			d.Repos.CacheRepo,
			userclient.NewClient(d.cfg.UserService, d.logger),
			db,
			d.cfg.Expiry,
			d.logger,
			d.Infra.Metrics,
		)

		reactionService := service.NewReactionService(
			d.Repos.OrderRepo,
			d.Repos.OutboxRepo,
			d.Repos.CacheRepo,
			db,
			d.logger,
			d.Infra.Metrics,
		)

		publisherService := initPublisher(d)

		d.Apps.Orders = usecases.NewOrdersApplication(
			orderService,
			reactionService,
			publisherService,
			d.Repos.OutboxRepo,
			adapters.NewHealthChecker(d.Infra.StorageClient, d.Infra.CacheClient, d.Infra.QueueClient),
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		d.Apps.Consumer = usecases.NewConsumerApplication(
			reactionService,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		d.Workers.ExpiryScanner = expiry.NewScanner(d.Apps.Orders, d.cfg.Expiry, d.logger)

		if err := registerConsumer(d, "orders-service", "reaction-worker",
			[]string{string(domain.EventUserStatusChanged)},
			workerqueue.NewReactionWorker(d.Apps.Consumer, d.Infra.Metrics, d.logger),
		); err != nil {
			return err
		}

		router := adapters.NewOrdersRouter(
			adapters.NewOrdersRequestHandler(d.Apps.Orders, d.logger),
			adapters.NewOutboxRequestHandler(
				d.Apps.Orders.Commands.MarkOutboxSentHandler,
				d.Apps.Orders.Commands.IncrementOutboxRetryHandler,
				d.Apps.Orders.Queries.FetchPendingOutboxEventsQueryHandler,
				d.logger,
			),
			adapters.NewHealthRequestHandler(
				d.Apps.Orders.Queries.FetchLivenessReportQueryHandler,
				d.Apps.Orders.Queries.FetchReadinessReportQueryHandler,
				d.Apps.Orders.Queries.FetchHealthReportQueryHandler,
				d.cfg.AppConfig.ServiceVersion,
				d.logger,
			),
			metricsHandler(d),
			initMiddlewares(d.cfg, d.logger, d.Infra.Metrics, false)...,
		)

		d.Infra.HTTPServer = initHTTPServer(d.cfg, d.logger, router, false)

		return nil
	}
}

// WithRelayService wires the fan-out relay: a consumer bound to every topic
// on the exchange, pushing records to connected SSE clients. The relay holds
// no state, so it runs without storage or cache.
func WithRelayService(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if err := applyOptions(d, WithQueue(ctx)); err != nil {
			return err
		}

		hub := sse.NewHub(d.cfg.SSE, d.logger)

		d.Apps.Relay = usecases.NewRelayApplication(
			service.NewRelayService(hub, d.logger, d.Infra.Metrics),
			adapters.NewHealthChecker(nil, nil, d.Infra.QueueClient),
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		if err := registerConsumer(d, "relay-service", "relay-worker",
			[]string{"#"},
			workerqueue.NewRelayWorker(d.Apps.Relay, d.logger),
		); err != nil {
			return err
		}

		router := adapters.NewRelayRouter(
			hub,
			adapters.NewHealthRequestHandler(
				d.Apps.Relay.Queries.FetchLivenessReportQueryHandler,
				d.Apps.Relay.Queries.FetchReadinessReportQueryHandler,
				d.Apps.Relay.Queries.FetchHealthReportQueryHandler,
				d.cfg.AppConfig.ServiceVersion,
				d.logger,
			),
			metricsHandler(d),
			initMiddlewares(d.cfg, d.logger, d.Infra.Metrics, true)...,
		)

		d.Infra.HTTPServer = initHTTPServer(d.cfg, d.logger, router, true)

		return nil
	}
}

// WithPublisher wires a standalone outbox drainer over the table named in
// the outbox configuration. The users and orders roles run the same drainer
// in-process; this role exists for deployments that split it out.
func WithPublisher(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if err := applyOptions(d, WithStorage(), WithOutboxRepo(d.cfg.Outbox.Table), WithQueue(ctx)); err != nil {
			return err
		}

		initPublisher(d)

		return nil
	}
}

// WithConsumer wires a standalone reaction consumer against the orders
// schema, for deployments that take the cancellation cascade out of the
// orders service process.
func WithConsumer(ctx context.Context) DependencyOption {
	return func(d *Dependencies) error {
		if err := applyOptions(d, WithStorage(), WithCache(ctx), WithDataRepos(), WithOutboxRepo(ordersOutboxTable), WithQueue(ctx)); err != nil {
			return err
		}

		db, err := d.Infra.StorageClient.GetDB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}

		reactionService := service.NewReactionService(
			d.Repos.OrderRepo,
			d.Repos.OutboxRepo,
			d.Repos.CacheRepo,
			db,
			d.logger,
			d.Infra.Metrics,
		)

		d.Apps.Consumer = usecases.NewConsumerApplication(
			reactionService,
			d.logger,
			otel.GetTracerProvider(),
			adapters.NewMetricsAdapter(d.Infra.Metrics),
		)

		return registerConsumer(d, "orders-service", "reaction-worker",
			[]string{string(domain.EventUserStatusChanged)},
			workerqueue.NewReactionWorker(d.Apps.Consumer, d.Infra.Metrics, d.logger),
		)
	}
}

func applyOptions(d *Dependencies, opts ...DependencyOption) error {
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return err
		}
	}

	return nil
}

// initPublisher builds the publishing pipeline over the already-selected
// outbox repository and hangs the drainer on the worker set.
func initPublisher(d *Dependencies) service.PublisherService {
	publisherService := service.NewPublisherService(
		d.Repos.OutboxRepo,
		d.Infra.QueueClient,
		d.cfg.Queue,
		d.cfg.Outbox,
		d.logger,
		d.Infra.Metrics,
	)

	d.Apps.Publisher = usecases.NewPublisherApplication(
		publisherService,
		d.logger,
		otel.GetTracerProvider(),
		adapters.NewMetricsAdapter(d.Infra.Metrics),
	)

	d.Workers.OutboxDrainer = outbox.NewDrainer(
		d.Apps.Publisher,
		d.Repos.OutboxRepo,
		d.cfg.Outbox,
		backoff.NewExponentialStrategy(d.cfg.Backoff),
		d.logger,
	)

	return publisherService
}

// registerConsumer declares the durable group queue with its bindings and
// queues the handler for startup. Consumer configuration overrides the
// role's defaults when set.
func registerConsumer(d *Dependencies, defaultGroup, tag string, defaultTopics []string, handler ports.MessageHandler) error {
	group := d.cfg.Consumer.GroupName
	if group == "" {
		group = defaultGroup
	}

	topics := d.cfg.Consumer.SubscribedTopics
	if len(topics) == 0 {
		topics = defaultTopics
	}

	if err := d.Infra.QueueClient.EnsureTopology(d.cfg.Queue.ExchangeName, group, topics); err != nil {
		return fmt.Errorf("failed to ensure queue topology: %w", err)
	}

	d.consumers = append(d.consumers, queueConsumer{
		queueName: group,
		tag:       tag,
		prefetch:  d.cfg.Consumer.PrefetchCount,
		handler:   handler,
	})

	return nil
}

func metricsHandler(d *Dependencies) http.Handler {
	if !d.cfg.Telemetry.Metrics.Enabled {
		return nil
	}

	return d.Infra.Metrics.Handler()
}
