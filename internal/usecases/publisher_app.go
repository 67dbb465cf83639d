package usecases

import (
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// PublisherApplication bundles the handlers the outbox drainer runs with.
	PublisherApplication struct {
		Commands PublisherCommands
		Queries  PublisherQueries
	}

	PublisherCommands struct {
		PublishOutboxEventHandler commands.PublishOutboxEventHandler
	}

	PublisherQueries struct {
		FetchPendingOutboxEventsQueryHandler queries.FetchPendingOutboxEventsQueryHandler
	}
)

func NewPublisherApplication(
	publisherService service.PublisherService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *PublisherApplication {
	return &PublisherApplication{
		Commands: PublisherCommands{
			PublishOutboxEventHandler: commands.NewPublishOutboxEventHandler(
				publisherService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
		Queries: PublisherQueries{
			FetchPendingOutboxEventsQueryHandler: queries.NewFetchPendingOutboxEventsQueryHandler(
				publisherService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
