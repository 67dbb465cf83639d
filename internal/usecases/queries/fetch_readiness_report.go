package queries

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
	"github.com/mjolner/svc-commerce-events/internal/shared/decorator"
	"go.opentelemetry.io/otel/trace"
)

type (
	FetchReadinessReportQuery struct{}

	FetchReadinessReportQueryHandler decorator.QueryHandler[FetchReadinessReportQuery, *domain.ReadinessResult]

	fetchReadinessReportQueryHandler struct {
		healthChecker ports.HealthChecker
	}
)

func NewFetchReadinessReportQueryHandler(
	healthChecker ports.HealthChecker,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchReadinessReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchReadinessReportQuery, *domain.ReadinessResult](
		fetchReadinessReportQueryHandler{
			healthChecker: healthChecker,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchReadinessReportQueryHandler) Execute(ctx context.Context, _ FetchReadinessReportQuery) (*domain.ReadinessResult, error) {
	return h.healthChecker.CheckReadiness(ctx), nil
}
