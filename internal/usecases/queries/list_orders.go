package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/service"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	"go.opentelemetry.io/otel/trace"
)

type (
	ListOrdersQuery struct {
		UserID uuid.UUID
	}

	ListOrdersQueryHandler decorator.QueryHandler[ListOrdersQuery, []*domain.Order]

	listOrdersQueryHandler struct {
		orderService service.OrderService
	}
)

func NewListOrdersQueryHandler(
	orderService service.OrderService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) ListOrdersQueryHandler {
	return decorator.ApplyQueryDecorators[ListOrdersQuery, []*domain.Order](
		listOrdersQueryHandler{
			orderService: orderService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h listOrdersQueryHandler) Execute(ctx context.Context, query ListOrdersQuery) ([]*domain.Order, error) {
	return h.orderService.ListOrders(ctx, query.UserID)
}
