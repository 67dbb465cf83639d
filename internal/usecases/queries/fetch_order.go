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
	FetchOrderQuery struct {
		OrderID uuid.UUID
	}

	FetchOrderQueryHandler decorator.QueryHandler[FetchOrderQuery, *domain.Order]

	fetchOrderQueryHandler struct {
		orderService service.OrderService
	}
)

func NewFetchOrderQueryHandler(
	orderService service.OrderService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchOrderQueryHandler {
	return decorator.ApplyQueryDecorators[FetchOrderQuery, *domain.Order](
		fetchOrderQueryHandler{
			orderService: orderService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchOrderQueryHandler) Execute(ctx context.Context, query FetchOrderQuery) (*domain.Order, error) {
	return h.orderService.FetchOrder(ctx, query.OrderID)
}
