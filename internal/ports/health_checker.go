package ports

import (
	"context"

	"github.com/mjolner/svc-commerce-events/internal/domain"
)

// HealthChecker probes the service's dependencies for the health endpoints.
type HealthChecker interface {
	CheckLiveness(ctx context.Context) *domain.LivenessResult
	CheckReadiness(ctx context.Context) *domain.ReadinessResult
	CheckHealth(ctx context.Context) *domain.HealthResult
}
