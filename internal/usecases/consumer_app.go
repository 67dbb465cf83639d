package usecases

import (
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	// ConsumerApplication bundles the handlers the queue workers dispatch to.
	ConsumerApplication struct {
		Commands ConsumerCommands
	}

	ConsumerCommands struct {
		CancelUserOrdersHandler commands.CancelUserOrdersHandler
	}
)

func NewConsumerApplication(
	reactionService service.ReactionService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) *ConsumerApplication {
	return &ConsumerApplication{
		Commands: ConsumerCommands{
			CancelUserOrdersHandler: commands.NewCancelUserOrdersHandler(
				reactionService,
				logger,
				tracerProvider,
				metricsClient,
			),
		},
	}
}
