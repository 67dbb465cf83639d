package mappers

import (
	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

func UserToResponse(user *domain.User) handlers.UserResponse {
	return handlers.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func OrderToResponse(order *domain.Order) handlers.OrderResponse {
	return handlers.OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Product:     order.Product,
		Quantity:    order.Quantity,
		Price:       order.Price,
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		ExpiresAt:   order.ExpiresAt,
		CancelledAt: order.CancelledAt,
	}
}

func OrdersToResponse(orders []*domain.Order) []handlers.OrderResponse {
	responses := make([]handlers.OrderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, OrderToResponse(order))
	}

	return responses
}

func OutboxEventToResponse(event *domain.OutboxEvent) handlers.OutboxEventResponse {
	return handlers.OutboxEventResponse{
		ID:           event.ID,
		EventType:    string(event.EventType),
		AggregateID:  event.AggregateID,
		Payload:      event.Payload,
		RetryCount:   event.RetryCount,
		ErrorDetails: event.ErrorDetails,
		CreatedAt:    event.CreatedAt,
		SentAt:       event.SentAt,
	}
}

func OutboxEventsToResponse(events []*domain.OutboxEvent) []handlers.OutboxEventResponse {
	responses := make([]handlers.OutboxEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, OutboxEventToResponse(event))
	}

	return responses
}
