package commands

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	CancelUserOrdersCommand struct {
		Event domain.UserStatusChangedPayload
	}

	CancelUserOrdersHandler decorator.CommandHandler[CancelUserOrdersCommand, *domain.CancelUserOrdersResult]

	cancelUserOrdersHandler struct {
		reactionService service.ReactionService
	}
)

func NewCancelUserOrdersHandler(
	reactionService service.ReactionService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) CancelUserOrdersHandler {
	return decorator.ApplyCommandDecorators[CancelUserOrdersCommand, *domain.CancelUserOrdersResult](
		cancelUserOrdersHandler{
			reactionService: reactionService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h cancelUserOrdersHandler) Handle(ctx context.Context, cmd CancelUserOrdersCommand) (*domain.CancelUserOrdersResult, error) {
	return h.reactionService.CancelOrdersForInactiveUser(ctx, cmd.Event)
}
