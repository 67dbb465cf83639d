package queue

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

// Ensure RelayWorker implements the MessageHandler interface
var _ ports.MessageHandler = (*RelayWorker)(nil)

// RelayWorker forwards every consumed event to the SSE fan-out verbatim.
// The payload is passed through as raw bytes; the relay never interprets it.
type RelayWorker struct {
	app    *usecases.RelayApplication
	logger infrastructure.Logger
}

func NewRelayWorker(
	app *usecases.RelayApplication,
	logger infrastructure.Logger,
) *RelayWorker {
	return &RelayWorker{
		app:    app,
		logger: logger,
	}
}

func (w *RelayWorker) ProcessMessage(ctx context.Context, msg queue.Message, ctrl *queue.MsgController) error {
	if _, err := w.app.Commands.RelayEventHandler.Handle(ctx, commands.RelayEventCommand{
		Topic:   msg.Topic(),
		Payload: msg.Raw(),
	}); err != nil {
		w.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("failed to relay event")

		return ctrl.Requeue(msg)
	}

	return ctrl.Ack(msg)
}
