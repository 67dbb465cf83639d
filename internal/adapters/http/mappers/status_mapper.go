package mappers

import (
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

func DomainLivenessStatusToHandler(status domain.LivenessResponseStatus) string {
	switch status {
	case domain.LivenessResponseStatusAlive:
		return handlers.StatusOK
	case domain.LivenessResponseStatusDegraded:
		return handlers.StatusDegraded
	default:
		return handlers.StatusDown
	}
}

func DomainReadinessStatusToHandler(status domain.ReadinessResponseStatus) string {
	switch status {
	case domain.ReadinessResponseStatusReady:
		return handlers.StatusOK
	case domain.ReadinessResponseStatusDegraded:
		return handlers.StatusDegraded
	default:
		return handlers.StatusDown
	}
}

func DomainHealthStatusToHandler(status domain.HealthResponseStatus) string {
	switch status {
	case domain.HealthResponseStatusHealthy:
		return handlers.StatusOK
	case domain.HealthResponseStatusDegraded:
		return handlers.StatusDegraded
	default:
		return handlers.StatusDown
	}
}

func DomainDependencyStatusToHandler(status domain.DependencyCheckStatus) string {
	switch status {
	case domain.DependencyCheckStatusHealthy:
		return handlers.StatusOK
	case domain.DependencyCheckStatusDegraded:
		return handlers.StatusDegraded
	default:
		return handlers.StatusDown
	}
}

func DependencyToHandler(dep domain.DependencyStatus) handlers.DependencyCheck {
	check := handlers.DependencyCheck{
		Status: DomainDependencyStatusToHandler(dep.Status),
	}

	if !dep.LastChecked.IsZero() {
		lastChecked := dep.LastChecked
		check.LastChecked = &lastChecked
		responseTime := dep.ResponseTime
		check.ResponseTime = &responseTime
	}

	if dep.Error != "" {
		errText := dep.Error
		check.Error = &errText
	}

	return check
}

func DependencyChecksToHandler(storage, cache, queue domain.DependencyStatus) handlers.DependencyChecks {
	return handlers.DependencyChecks{
		Storage: DependencyToHandler(storage),
		Cache:   DependencyToHandler(cache),
		Queue:   DependencyToHandler(queue),
	}
}
