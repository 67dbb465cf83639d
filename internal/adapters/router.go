package adapters

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewUsersRouter mounts the users command surface, the outbox admin
// endpoints, and the operational endpoints.
func NewUsersRouter(
	users *UsersRequestHandler,
	outbox *OutboxRequestHandler,
	health *HealthRequestHandler,
	metricsHandler http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewares...)

	router.Route("/api", func(r chi.Router) {
		r.Post("/users", users.CreateUser)
		r.Get("/users/{id}", users.GetUser)
		r.Patch("/users/{id}/status", users.ChangeUserStatus)

		registerOutboxRoutes(r, outbox)
	})

	registerOperationalRoutes(router, health, metricsHandler)

	return router
}

// NewOrdersRouter mounts the orders command surface, the outbox admin
// endpoints, and the operational endpoints.
func NewOrdersRouter(
	orders *OrdersRequestHandler,
	outbox *OutboxRequestHandler,
	health *HealthRequestHandler,
	metricsHandler http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewares...)

	router.Route("/api", func(r chi.Router) {
		r.Post("/orders", orders.CreateOrder)
		r.Get("/orders", orders.ListOrders)
		r.Get("/orders/{id}", orders.GetOrder)
		r.Patch("/orders/{id}/status", orders.UpdateOrderStatus)

		registerOutboxRoutes(r, outbox)
	})

	registerOperationalRoutes(router, health, metricsHandler)

	return router
}

// NewRelayRouter mounts the SSE stream and the operational endpoints.
func NewRelayRouter(
	stream http.Handler,
	health *HealthRequestHandler,
	metricsHandler http.Handler,
	middlewares ...func(http.Handler) http.Handler,
) chi.Router {
	router := chi.NewRouter()
	router.Use(middlewares...)

	router.Get("/events", stream.ServeHTTP)

	registerOperationalRoutes(router, health, metricsHandler)

	return router
}

func registerOutboxRoutes(r chi.Router, outbox *OutboxRequestHandler) {
	r.Get("/outbox/unsent", outbox.GetUnsent)
	r.Post("/outbox/mark-sent/{id}", outbox.MarkSent)
	r.Post("/outbox/increment-retry/{id}", outbox.IncrementRetry)
}

func registerOperationalRoutes(router chi.Router, health *HealthRequestHandler, metricsHandler http.Handler) {
	router.Get("/health", health.HealthCheck)
	router.Get("/ready", health.ReadinessCheck)
	router.Get("/live", health.LivenessCheck)

	if metricsHandler != nil {
		router.Get("/metrics", metricsHandler.ServeHTTP)
	}
}
