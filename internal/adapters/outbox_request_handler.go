package adapters

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/mappers"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
)

const defaultUnsentLimit = 50

// OutboxRequestHandler serves the operational outbox endpoints. They exist so
// a pull-based dispatcher remains possible and should stay network-restricted.
type OutboxRequestHandler struct {
	markSent       commands.MarkOutboxSentHandler
	incrementRetry commands.IncrementOutboxRetryHandler
	fetchUnsent    queries.FetchPendingOutboxEventsQueryHandler
	logger         infrastructure.Logger
}

func NewOutboxRequestHandler(
	markSent commands.MarkOutboxSentHandler,
	incrementRetry commands.IncrementOutboxRetryHandler,
	fetchUnsent queries.FetchPendingOutboxEventsQueryHandler,
	logger infrastructure.Logger,
) *OutboxRequestHandler {
	return &OutboxRequestHandler{
		markSent:       markSent,
		incrementRetry: incrementRetry,
		fetchUnsent:    fetchUnsent,
		logger:         logger,
	}
}

func (h *OutboxRequestHandler) GetUnsent(w http.ResponseWriter, r *http.Request) {
	limit := defaultUnsentLimit
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid max query parameter", raw)

			return
		}

		limit = parsed
	}

	events, err := h.fetchUnsent.Execute(r.Context(), queries.FetchPendingOutboxEventsQuery{
		BatchSize: limit,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, mappers.OutboxEventsToResponse(events))
}

func (h *OutboxRequestHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid outbox row id", err.Error())

		return
	}

	if _, err := h.markSent.Handle(r.Context(), commands.MarkOutboxSentCommand{EventID: id}); err != nil {
		writeDomainError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OutboxRequestHandler) IncrementRetry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid outbox row id", err.Error())

		return
	}

	if _, err := h.incrementRetry.Handle(r.Context(), commands.IncrementOutboxRetryCommand{EventID: id}); err != nil {
		writeDomainError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
