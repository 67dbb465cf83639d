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
	ExpireOrdersCommand struct {
		BatchSize int
	}

	ExpireOrdersHandler decorator.CommandHandler[ExpireOrdersCommand, *domain.ExpireOrdersResult]

	expireOrdersHandler struct {
		reactionService service.ReactionService
	}
)

func NewExpireOrdersHandler(
	reactionService service.ReactionService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) ExpireOrdersHandler {
	return decorator.ApplyCommandDecorators[ExpireOrdersCommand, *domain.ExpireOrdersResult](
		expireOrdersHandler{
			reactionService: reactionService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h expireOrdersHandler) Handle(ctx context.Context, cmd ExpireOrdersCommand) (*domain.ExpireOrdersResult, error) {
	return h.reactionService.ExpireOrders(ctx, cmd.BatchSize)
}
