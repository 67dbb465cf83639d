package adapters

import (
	"context"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/ports"
)

const dependencyCheckTimeout = 2 * time.Second

// HealthChecker probes the process's real dependencies. Cache and queue are
// optional: a role that runs without them reports those checks as healthy.
type HealthChecker struct {
	storage   *infrastructure.Storage
	cache     *infrastructure.KeydbClient
	queue     infrastructure.Queue
	startTime time.Time
}

func NewHealthChecker(
	storage *infrastructure.Storage,
	cache *infrastructure.KeydbClient,
	queue infrastructure.Queue,
) ports.HealthChecker {
	return &HealthChecker{
		storage:   storage,
		cache:     cache,
		queue:     queue,
		startTime: time.Now(),
	}
}

func (h *HealthChecker) CheckLiveness(ctx context.Context) *domain.LivenessResult {
	storageStatus := h.checkStorage(ctx)
	cacheStatus := h.checkCache(ctx)
	queueStatus := h.checkQueue()

	// Liveness only answers "is this process worth keeping alive"; a dead
	// database is survivable, the orchestrator should not restart us for it.
	overallStatus := domain.LivenessResponseStatusAlive
	if storageStatus.Status == domain.DependencyCheckStatusUnhealthy {
		overallStatus = domain.LivenessResponseStatusDegraded
	}

	return &domain.LivenessResult{
		OverallStatus: overallStatus,
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Queue:         queueStatus,
	}
}

func (h *HealthChecker) CheckReadiness(ctx context.Context) *domain.ReadinessResult {
	storageStatus := h.checkStorage(ctx)
	cacheStatus := h.checkCache(ctx)
	queueStatus := h.checkQueue()

	// Storage is the hard dependency: without it no command can commit.
	overallStatus := domain.ReadinessResponseStatusReady
	switch {
	case storageStatus.Status == domain.DependencyCheckStatusUnhealthy:
		overallStatus = domain.ReadinessResponseStatusNotReady
	case cacheStatus.Status == domain.DependencyCheckStatusUnhealthy,
		queueStatus.Status == domain.DependencyCheckStatusUnhealthy:
		overallStatus = domain.ReadinessResponseStatusDegraded
	}

	return &domain.ReadinessResult{
		OverallStatus: overallStatus,
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Queue:         queueStatus,
	}
}

func (h *HealthChecker) CheckHealth(ctx context.Context) *domain.HealthResult {
	storageStatus := h.checkStorage(ctx)
	cacheStatus := h.checkCache(ctx)
	queueStatus := h.checkQueue()

	return &domain.HealthResult{
		OverallStatus: overallHealthStatus(storageStatus, cacheStatus, queueStatus),
		Storage:       storageStatus,
		Cache:         cacheStatus,
		Queue:         queueStatus,
		Uptime:        float32(time.Since(h.startTime).Seconds()),
	}
}

func overallHealthStatus(storage, cache, queue domain.DependencyStatus) domain.HealthResponseStatus {
	if storage.Status == domain.DependencyCheckStatusUnhealthy {
		return domain.HealthResponseStatusUnhealthy
	}

	if cache.Status == domain.DependencyCheckStatusUnhealthy ||
		queue.Status == domain.DependencyCheckStatusUnhealthy {
		return domain.HealthResponseStatusDegraded
	}

	return domain.HealthResponseStatusHealthy
}

func (h *HealthChecker) checkStorage(ctx context.Context) domain.DependencyStatus {
	if h.storage == nil {
		return healthyStatus(0)
	}

	checkCtx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.storage.Ping(checkCtx); err != nil {
		return unhealthyStatus(start, err)
	}

	return healthyStatus(float32(time.Since(start).Milliseconds()))
}

func (h *HealthChecker) checkCache(ctx context.Context) domain.DependencyStatus {
	if h.cache == nil {
		return healthyStatus(0)
	}

	checkCtx, cancel := context.WithTimeout(ctx, dependencyCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.cache.Ping(checkCtx); err != nil {
		return unhealthyStatus(start, err)
	}

	return healthyStatus(float32(time.Since(start).Milliseconds()))
}

func (h *HealthChecker) checkQueue() domain.DependencyStatus {
	if h.queue == nil {
		return healthyStatus(0)
	}

	if !h.queue.IsConnected() {
		return domain.DependencyStatus{
			Status:      domain.DependencyCheckStatusUnhealthy,
			LastChecked: time.Now(),
			Error:       "not connected to broker",
		}
	}

	return healthyStatus(0)
}

func healthyStatus(responseTime float32) domain.DependencyStatus {
	return domain.DependencyStatus{
		Status:       domain.DependencyCheckStatusHealthy,
		ResponseTime: responseTime,
		LastChecked:  time.Now(),
	}
}

func unhealthyStatus(start time.Time, err error) domain.DependencyStatus {
	return domain.DependencyStatus{
		Status:       domain.DependencyCheckStatusUnhealthy,
		ResponseTime: float32(time.Since(start).Milliseconds()),
		LastChecked:  time.Now(),
		Error:        err.Error(),
	}
}
