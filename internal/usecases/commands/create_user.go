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
	CreateUserCommand struct {
		Name  string
		Email string
	}

	CreateUserHandler decorator.CommandHandler[CreateUserCommand, *domain.User]

	createUserHandler struct {
		userService service.UserService
	}
)

func NewCreateUserHandler(
	userService service.UserService,
	logger infrastructure.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient decorator.MetricsClient,
) CreateUserHandler {
	return decorator.ApplyCommandDecorators[CreateUserCommand, *domain.User](
		createUserHandler{
			userService: userService,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h createUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*domain.User, error) {
	return h.userService.CreateUser(ctx, cmd.Name, cmd.Email)
}
