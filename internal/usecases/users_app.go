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
	// UsersApplication bundles the handlers exposed by the users service,
	// including the outbox admin surface over its own outbox table.
	UsersApplication struct {
		Commands UsersCommands
		Queries  UsersQueries
	}

	UsersCommands struct {
		CreateUserHandler           commands.CreateUserHandler
		ChangeUserStatusHandler     commands.ChangeUserStatusHandler
		MarkOutboxSentHandler       commands.MarkOutboxSentHandler
		IncrementOutboxRetryHandler commands.IncrementOutboxRetryHandler
	}

	UsersQueries struct {
		FetchUserQueryHandler                queries.FetchUserQueryHandler
		FetchPendingOutboxEventsQueryHandler queries.FetchPendingOutboxEventsQueryHandler
		FetchLivenessReportQueryHandler      queries.FetchLivenessReportQueryHandler
		FetchReadinessReportQueryHandler     queries.FetchReadinessReportQueryHandler
		FetchHealthReportQueryHandler        queries.FetchHealthReportQueryHandler
	}
)

func NewUsersApplication(
	userService service.UserService,
	publisherService service.PublisherService,
	outboxRepo ports.OutboxRepository,
	healthChecker ports.HealthChecker,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *UsersApplication {
	return &UsersApplication{
		Commands: UsersCommands{
			CreateUserHandler: commands.NewCreateUserHandler(
				userService,
				logger,
				tracerProvider,
				metricsClient,
			),
			ChangeUserStatusHandler: commands.NewChangeUserStatusHandler(
				userService,
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
		Queries: UsersQueries{
			FetchUserQueryHandler: queries.NewFetchUserQueryHandler(
				userService,
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
