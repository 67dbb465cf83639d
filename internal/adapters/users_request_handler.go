package adapters

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/mappers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/mjolner/svc-commerce-events/internal/usecases"
	"github.com/mjolner/svc-commerce-events/internal/usecases/commands"
	"github.com/mjolner/svc-commerce-events/internal/usecases/queries"
)

type UsersRequestHandler struct {
	app    *usecases.UsersApplication
	logger infrastructure.Logger
}

func NewUsersRequestHandler(
	app *usecases.UsersApplication,
	logger infrastructure.Logger,
) *UsersRequestHandler {
	return &UsersRequestHandler{
		app:    app,
		logger: logger,
	}
}

func (h *UsersRequestHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req handlers.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid request body", err.Error())

		return
	}

	user, err := h.app.Commands.CreateUserHandler.Handle(r.Context(), commands.CreateUserCommand{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, mappers.UserToResponse(user))
}

func (h *UsersRequestHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid user id", err.Error())

		return
	}

	user, err := h.app.Queries.FetchUserQueryHandler.Execute(r.Context(), queries.FetchUserQuery{
		UserID: id,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, mappers.UserToResponse(user))
}

func (h *UsersRequestHandler) ChangeUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid user id", err.Error())

		return
	}

	var req handlers.ChangeUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid request body", err.Error())

		return
	}

	status, ok := domain.ParseUserStatus(req.Status)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Unknown user status", req.Status)

		return
	}

	if _, err := h.app.Commands.ChangeUserStatusHandler.Handle(r.Context(), commands.ChangeUserStatusCommand{
		UserID: id,
		Status: status,
		Reason: req.Reason,
	}); err != nil {
		writeDomainError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
