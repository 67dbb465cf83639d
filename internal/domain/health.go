package domain

import "time"

type (
	DependencyCheckStatus string

	LivenessResponseStatus string

	ReadinessResponseStatus string

	HealthResponseStatus string
)

const (
	DependencyCheckStatusHealthy   DependencyCheckStatus = "healthy"
	DependencyCheckStatusDegraded  DependencyCheckStatus = "degraded"
	DependencyCheckStatusUnhealthy DependencyCheckStatus = "unhealthy"
)

const (
	LivenessResponseStatusAlive    LivenessResponseStatus = "alive"
	LivenessResponseStatusDegraded LivenessResponseStatus = "degraded"
	LivenessResponseStatusDead     LivenessResponseStatus = "dead"
)

const (
	ReadinessResponseStatusReady    ReadinessResponseStatus = "ready"
	ReadinessResponseStatusDegraded ReadinessResponseStatus = "degraded"
	ReadinessResponseStatusNotReady ReadinessResponseStatus = "not_ready"
)

const (
	HealthResponseStatusHealthy   HealthResponseStatus = "healthy"
	HealthResponseStatusDegraded  HealthResponseStatus = "degraded"
	HealthResponseStatusUnhealthy HealthResponseStatus = "unhealthy"
)

type (
	// DependencyStatus represents the health status of a dependency
	DependencyStatus struct {
		Status       DependencyCheckStatus
		ResponseTime float32
		LastChecked  time.Time
		Error        string
	}

	// LivenessResult contains liveness check results
	LivenessResult struct {
		OverallStatus LivenessResponseStatus
		Storage       DependencyStatus
		Cache         DependencyStatus
		Queue         DependencyStatus
	}

	// ReadinessResult contains readiness check results
	ReadinessResult struct {
		OverallStatus ReadinessResponseStatus
		Storage       DependencyStatus
		Cache         DependencyStatus
		Queue         DependencyStatus
	}

	// HealthResult contains comprehensive health check results
	HealthResult struct {
		OverallStatus HealthResponseStatus
		Storage       DependencyStatus
		Cache         DependencyStatus
		Queue         DependencyStatus
		Uptime        float32
	}
)
