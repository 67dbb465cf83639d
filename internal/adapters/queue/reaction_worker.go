package queue

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/pkg/queue"
)

// Ensure ReactionWorker implements the MessageHandler interface
var _ ports.MessageHandler = (*ReactionWorker)(nil)

// ReactionWorker consumes user status events on the orders side and cancels
// the affected user's open orders. Redelivered messages are safe: the cascade
// re-reads the user's orders under a transaction and only touches the ones
// still cancellable.
type ReactionWorker struct {
	app     *usecases.ConsumerApplication
	metrics infrastructure.Metrics
	logger  infrastructure.Logger
}

func NewReactionWorker(
	app *usecases.ConsumerApplication,
	metrics infrastructure.Metrics,
	logger infrastructure.Logger,
) *ReactionWorker {
	return &ReactionWorker{
		app:     app,
		metrics: metrics,
		logger:  logger,
	}
}

func (w *ReactionWorker) ProcessMessage(ctx context.Context, msg queue.Message, ctrl *queue.MsgController) error {
	topic := msg.Topic()

	// A payload that cannot decode will never decode. Acknowledge and skip
	// instead of blocking the queue head on redeliveries.
	var payload domain.UserStatusChangedPayload
	if len(msg.Raw()) == 0 || msg.Unmarshal(&payload) != nil || payload.UserID == uuid.Nil {
		w.logger.Error().Str("topic", topic).Msg("discarding undecodable user status event")
		w.metrics.RecordConsumedEvent(ctx, topic, "discarded")

		return ctrl.Ack(msg)
	}

	result, err := w.app.Commands.CancelUserOrdersHandler.Handle(ctx, commands.CancelUserOrdersCommand{
		Event: payload,
	})
	if err != nil {
		w.logger.Error().Err(err).Str("user_id", payload.UserID.String()).
			Msg("failed to react to user status event")
		w.metrics.RecordConsumedEvent(ctx, topic, "requeued")

		// Requeue so the broker redelivers once the failure clears.
		return ctrl.Requeue(msg)
	}

	if n := len(result.CancelledOrders); n > 0 {
		w.logger.Info().
			Str("user_id", payload.UserID.String()).
			Int("cancelled_orders", n).
			Msg("cancelled orders for inactivated user")
	}

	w.metrics.RecordConsumedEvent(ctx, topic, "processed")

	return ctrl.Ack(msg)
}
