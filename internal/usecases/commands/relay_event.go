package commands

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	RelayEventCommand struct {
		Topic   string
		Payload []byte
	}

	RelayEventHandler decorator.CommandHandler[RelayEventCommand, bool]

	relayEventHandler struct {
		relayService service.RelayService
	}
)

func NewRelayEventHandler(
	relayService service.RelayService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) RelayEventHandler {
	return decorator.ApplyCommandDecorators[RelayEventCommand, bool](
		relayEventHandler{
			relayService: relayService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h relayEventHandler) Handle(ctx context.Context, cmd RelayEventCommand) (bool, error) {
	if err := h.relayService.Relay(ctx, cmd.Topic, cmd.Payload); err != nil {
		return false, err
	}

	return true, nil
}
