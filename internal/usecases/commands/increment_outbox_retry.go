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
	IncrementOutboxRetryCommand struct {
		EventID uuid.UUID
	}

	IncrementOutboxRetryHandler decorator.CommandHandler[IncrementOutboxRetryCommand, bool]

	incrementOutboxRetryHandler struct {
		outboxRepo ports.OutboxRepository
	}
)

func NewIncrementOutboxRetryHandler(
	outboxRepo ports.OutboxRepository,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) IncrementOutboxRetryHandler {
	return decorator.ApplyCommandDecorators[IncrementOutboxRetryCommand, bool](
		incrementOutboxRetryHandler{
			outboxRepo: outboxRepo,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h incrementOutboxRetryHandler) Handle(ctx context.Context, cmd IncrementOutboxRetryCommand) (bool, error) {
	if err := h.outboxRepo.IncrementRetry(ctx, cmd.EventID); err != nil {
		return false, err
	}

	return true, nil
}
