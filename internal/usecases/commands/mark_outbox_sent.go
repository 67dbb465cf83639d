package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	MarkOutboxSentCommand struct {
		EventID uuid.UUID
	}

	MarkOutboxSentHandler decorator.CommandHandler[MarkOutboxSentCommand, bool]

	markOutboxSentHandler struct {
		outboxRepo ports.OutboxRepository
	}
)

func NewMarkOutboxSentHandler(
	outboxRepo ports.OutboxRepository,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) MarkOutboxSentHandler {
	return decorator.ApplyCommandDecorators[MarkOutboxSentCommand, bool](
		markOutboxSentHandler{
			outboxRepo: outboxRepo,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h markOutboxSentHandler) Handle(ctx context.Context, cmd MarkOutboxSentCommand) (bool, error) {
	if err := h.outboxRepo.MarkSent(ctx, cmd.EventID); err != nil {
		return false, err
	}

	return true, nil
}
