package commands

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	UpdateOrderStatusCommand struct {
		OrderID uuid.UUID
		Status  domain.OrderStatus
		Reason  string
	}

	UpdateOrderStatusHandler decorator.CommandHandler[UpdateOrderStatusCommand, *domain.OrderStatusChangeResult]

	updateOrderStatusHandler struct {
		orderService service.OrderService
	}
)

func NewUpdateOrderStatusHandler(
	orderService service.OrderService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) UpdateOrderStatusHandler {
	return decorator.ApplyCommandDecorators[UpdateOrderStatusCommand, *domain.OrderStatusChangeResult](
		updateOrderStatusHandler{
			orderService: orderService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h updateOrderStatusHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (*domain.OrderStatusChangeResult, error) {
	order, changed, err := h.orderService.UpdateOrderStatus(ctx, cmd.OrderID, cmd.Status, cmd.Reason)
	if err != nil {
		return nil, err
	}

	return &domain.OrderStatusChangeResult{Order: order, Changed: changed}, nil
}
