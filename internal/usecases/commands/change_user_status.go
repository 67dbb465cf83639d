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
	ChangeUserStatusCommand struct {
		UserID uuid.UUID
		Status domain.UserStatus
		Reason string
	}

	ChangeUserStatusHandler decorator.CommandHandler[ChangeUserStatusCommand, *domain.UserStatusChangeResult]

	changeUserStatusHandler struct {
		userService service.UserService
	}
)

func NewChangeUserStatusHandler(
	userService service.UserService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) ChangeUserStatusHandler {
	return decorator.ApplyCommandDecorators[ChangeUserStatusCommand, *domain.UserStatusChangeResult](
		changeUserStatusHandler{
			userService: userService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h changeUserStatusHandler) Handle(ctx context.Context, cmd ChangeUserStatusCommand) (*domain.UserStatusChangeResult, error) {
	user, changed, err := h.userService.ChangeUserStatus(ctx, cmd.UserID, cmd.Status, cmd.Reason)
	if err != nil {
		return nil, err
	}

	return &domain.UserStatusChangeResult{User: user, Changed: changed}, nil
}
