package adapters

import (
	"net/http"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/mappers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
)

type HealthRequestHandler struct {
	liveness  queries.FetchLivenessReportQueryHandler
	readiness queries.FetchReadinessReportQueryHandler
	health    queries.FetchHealthReportQueryHandler
	version   string
	logger    infrastructure.Logger
}

func NewHealthRequestHandler(
	liveness queries.FetchLivenessReportQueryHandler,
	readiness queries.FetchReadinessReportQueryHandler,
	health queries.FetchHealthReportQueryHandler,
	version string,
	logger infrastructure.Logger,
) *HealthRequestHandler {
	return &HealthRequestHandler{
		liveness:  liveness,
		readiness: readiness,
		health:    health,
		version:   version,
		logger:    logger,
	}
}

func (h *HealthRequestHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.liveness.Execute(r.Context(), queries.FetchLivenessReportQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check liveness", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.LivenessResponseStatusDead {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, handlers.LivenessResponse{
		Status:    mappers.DomainLivenessStatusToHandler(result.OverallStatus),
		Timestamp: time.Now(),
		Version:   h.version,
	})
}

func (h *HealthRequestHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.readiness.Execute(r.Context(), queries.FetchReadinessReportQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check readiness", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.ReadinessResponseStatusNotReady {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, handlers.ReadinessResponse{
		Status:    mappers.DomainReadinessStatusToHandler(result.OverallStatus),
		Timestamp: time.Now(),
		Version:   h.version,
		Checks:    mappers.DependencyChecksToHandler(result.Storage, result.Cache, result.Queue),
	})
}

func (h *HealthRequestHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.health.Execute(r.Context(), queries.FetchHealthReportQuery{})
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "internal_server_error", "Failed to check health", err.Error())

		return
	}

	statusCode := http.StatusOK
	if result.OverallStatus == domain.HealthResponseStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, handlers.HealthResponse{
		Status:    mappers.DomainHealthStatusToHandler(result.OverallStatus),
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    result.Uptime,
		Checks:    mappers.DependencyChecksToHandler(result.Storage, result.Cache, result.Queue),
	})
}
