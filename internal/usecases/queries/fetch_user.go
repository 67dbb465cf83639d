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
	FetchUserQuery struct {
		UserID uuid.UUID
	}

	FetchUserQueryHandler decorator.QueryHandler[FetchUserQuery, *domain.User]

	fetchUserQueryHandler struct {
		userService service.UserService
	}
)

func NewFetchUserQueryHandler(
	userService service.UserService,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchUserQueryHandler {
	return decorator.ApplyQueryDecorators[FetchUserQuery, *domain.User](
		fetchUserQueryHandler{
			userService: userService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchUserQueryHandler) Execute(ctx context.Context, query FetchUserQuery) (*domain.User, error) {
	return h.userService.FetchUser(ctx, query.UserID)
}
