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
	FetchLivenessReportQuery struct{}

	FetchLivenessReportQueryHandler decorator.QueryHandler[FetchLivenessReportQuery, *domain.LivenessResult]

	fetchLivenessReportQueryHandler struct {
		healthChecker ports.HealthChecker
	}
)

func NewFetchLivenessReportQueryHandler(
	healthChecker ports.HealthChecker,
	logger infrastructure.Logger,
	tracerProvider trace.TracerProvider,
	metricsClient decorator.MetricsClient,
) FetchLivenessReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchLivenessReportQuery, *domain.LivenessResult](
		fetchLivenessReportQueryHandler{
			healthChecker: healthChecker,
		},
		logger,
		tracerProvider,
		metricsClient,
	)
}

func (h fetchLivenessReportQueryHandler) Execute(ctx context.Context, _ FetchLivenessReportQuery) (*domain.LivenessResult, error) {
	return h.healthChecker.CheckLiveness(ctx), nil
}
