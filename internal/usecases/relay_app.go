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
	// RelayApplication bundles the handlers of the SSE relay service.
	RelayApplication struct {
		Commands RelayCommands
		Queries  RelayQueries
	}

	RelayCommands struct {
		RelayEventHandler commands.RelayEventHandler
	}

	RelayQueries struct {
		FetchLivenessReportQueryHandler  queries.FetchLivenessReportQueryHandler
		FetchReadinessReportQueryHandler queries.FetchReadinessReportQueryHandler
		FetchHealthReportQueryHandler    queries.FetchHealthReportQueryHandler
	}
)

func NewRelayApplication(
	relayService service.RelayService,
	healthChecker ports.HealthChecker,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *RelayApplication {
	return &RelayApplication{
		Commands: RelayCommands{
			RelayEventHandler: commands.NewRelayEventHandler(
				relayService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
		Queries: RelayQueries{
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
