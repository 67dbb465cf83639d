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
	CreateOrderCommand struct {
		UserID   uuid.UUID
		Product  string
		Quantity int
		Price    float64
	}

	CreateOrderHandler decorator.CommandHandler[CreateOrderCommand, *domain.Order]

	createOrderHandler struct {
		orderService service.OrderService
	}
)

func NewCreateOrderHandler(
	orderService service.OrderService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) CreateOrderHandler {
	return decorator.ApplyCommandDecorators[CreateOrderCommand, *domain.Order](
		createOrderHandler{
			orderService: orderService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h createOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	return h.orderService.CreateOrder(ctx, cmd.UserID, cmd.Product, cmd.Quantity, cmd.Price)
}
