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

type OrdersRequestHandler struct {
	app    *usecases.OrdersApplication
	logger infrastructure.Logger
}

func NewOrdersRequestHandler(
	app *usecases.OrdersApplication,
	logger infrastructure.Logger,
) *OrdersRequestHandler {
	return &OrdersRequestHandler{
		app:    app,
		logger: logger,
	}
}

func (h *OrdersRequestHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req handlers.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid request body", err.Error())

		return
	}

	order, err := h.app.Commands.CreateOrderHandler.Handle(r.Context(), commands.CreateOrderCommand{
		UserID:   req.UserID,
		Product:  req.Product,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, mappers.OrderToResponse(order))
}

func (h *OrdersRequestHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid order id", err.Error())

		return
	}

	order, err := h.app.Queries.FetchOrderQueryHandler.Execute(r.Context(), queries.FetchOrderQuery{
		OrderID: id,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, mappers.OrderToResponse(order))
}

func (h *OrdersRequestHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	rawUserID := r.URL.Query().Get("userId")
	if rawUserID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Missing userId query parameter", "")

		return
	}

	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid userId query parameter", err.Error())

		return
	}

	orders, err := h.app.Queries.ListOrdersQueryHandler.Execute(r.Context(), queries.ListOrdersQuery{
		UserID: userID,
	})
	if err != nil {
		writeDomainError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, mappers.OrdersToResponse(orders))
}

func (h *OrdersRequestHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid order id", err.Error())

		return
	}

	var req handlers.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Invalid request body", err.Error())

		return
	}

	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "Unknown order status", req.Status)

		return
	}

	if _, err := h.app.Commands.UpdateOrderStatusHandler.Handle(r.Context(), commands.UpdateOrderStatusCommand{
		OrderID: id,
		Status:  status,
		Reason:  req.Reason,
	}); err != nil {
		writeDomainError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
