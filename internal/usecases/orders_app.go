package usecases

import (
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// OrdersApplication bundles the handlers exposed by the orders service.
	// The expiry scanner and the outbox admin surface run inside the same
	// process, so their handlers live here too.
	OrdersApplication struct {
		Commands OrdersCommands
		Queries  OrdersQueries
	}

	OrdersCommands struct {
		CreateOrderHandler          commands.CreateOrderHandler
		UpdateOrderStatusHandler    commands.UpdateOrderStatusHandler
		ExpireOrdersHandler         commands.ExpireOrdersHandler
		MarkOutboxSentHandler       commands.MarkOutboxSentHandler
		IncrementOutboxRetryHandler commands.IncrementOutboxRetryHandler
	}

	OrdersQueries struct {
		FetchOrderQueryHandler               queries.FetchOrderQueryHandler
		ListOrdersQueryHandler               queries.ListOrdersQueryHandler
		FetchPendingOutboxEventsQueryHandler queries.FetchPendingOutboxEventsQueryHandler
		FetchLivenessReportQueryHandler      queries.FetchLivenessReportQueryHandler
		FetchReadinessReportQueryHandler     queries.FetchReadinessReportQueryHandler
		FetchHealthReportQueryHandler        queries.FetchHealthReportQueryHandler
	}
)

func NewOrdersApplication(
	orderService service.OrderService,
	reactionService service.ReactionService,
	publisherService service.PublisherService,
	outboxRepo ports.OutboxRepository,
	healthChecker ports.HealthChecker,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *OrdersApplication {
	return &OrdersApplication{
		Commands: OrdersCommands{
			CreateOrderHandler: commands.NewCreateOrderHandler(
				orderService,
				logger,
				tracerProvider,
				metricsClient,
			),
			UpdateOrderStatusHandler: commands.NewUpdateOrderStatusHandler(
				orderService,
				logger,
				tracerProvider,
				metricsClient,
			),
			ExpireOrdersHandler: commands.NewExpireOrdersHandler(
				reactionService,
				logger,
				tracerProvider,
				metricsClient,
			),
			MarkOutboxSentHandler: commands.NewMarkOutboxSentHandler(
				outboxRepo,
				logger,
				tracerProvider,
				metricsClient,
			),
			IncrementOutboxRetryHandler: commands.NewIncrementOutboxRetryHandler(
				outboxRepo,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
		Queries: OrdersQueries{
			FetchOrderQueryHandler: queries.NewFetchOrderQueryHandler(
				orderService,
				logger,
				tracerProvider,
				metricsClient,
			),
			ListOrdersQueryHandler: queries.NewListOrdersQueryHandler(
				orderService,
				logger,
				tracerProvider,
				metricsClient,
			),
			FetchPendingOutboxEventsQueryHandler: queries.NewFetchPendingOutboxEventsQueryHandler(
				publisherService,
				logger,
				tracerProvider,
				metricsClient,
			),
			FetchLivenessReportQueryHandler: queries.NewFetchLivenessReportQueryHandler(
				healthChecker,
				logger,
				tracerProvider,
				metricsClient,
			),
			FetchReadinessReportQueryHandler: queries.NewFetchReadinessReportQueryHandler(
				healthChecker,
				logger,
				tracerProvider,
				metricsClient,
			),
			FetchHealthReportQueryHandler: queries.NewFetchHealthReportQueryHandler(
				healthChecker,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
