package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cancellation reasons carried on orders.cancelled events.
const (
	CancelReasonUserInactivated = "user_inactivated"
	CancelReasonTimeout         = "timeout"
)

type (
	// UserCreatedPayload is the users.created wire shape. Field names are the
	// exported Go names on purpose: the snapshot marshals as Id/Name/Email.
	UserCreatedPayload struct {
		Id    uuid.UUID
		Name  string
		Email string
	}

	UserStatusChangedPayload struct {
		EventID    uuid.UUID  `json:"eventId"`
		OccurredAt time.Time  `json:"occurredAt"`
		UserID     uuid.UUID  `json:"userId"`
		OldStatus  UserStatus `json:"oldStatus"`
		NewStatus  UserStatus `json:"newStatus"`
		Reason     string     `json:"reason,omitempty"`
	}

	OrderCreatedPayload struct {
		ID       uuid.UUID   `json:"id"`
		UserID   uuid.UUID   `json:"userId"`
		Product  string      `json:"product"`
		Quantity int         `json:"quantity"`
		Price    float64     `json:"price"`
		Status   OrderStatus `json:"status"`
	}

	OrderStatusChangedPayload struct {
		EventID    uuid.UUID   `json:"eventId"`
		OccurredAt time.Time   `json:"occurredAt"`
		OrderID    uuid.UUID   `json:"orderId"`
		UserID     uuid.UUID   `json:"userId"`
		OldStatus  OrderStatus `json:"oldStatus"`
		NewStatus  OrderStatus `json:"newStatus"`
		Reason     string      `json:"reason,omitempty"`
	}

	OrderCancelledPayload struct {
		EventID    uuid.UUID `json:"eventId"`
		OccurredAt time.Time `json:"occurredAt"`
		OrderID    uuid.UUID `json:"orderId"`
		UserID     uuid.UUID `json:"userId"`
		Reason     string    `json:"reason"`
	}

	// RelayEvent is the shape the fan-out relay pushes to browsers: the bus
	// topic plus the record's raw payload, untouched.
	RelayEvent struct {
		Topic   string          `json:"topic"`
		Payload json.RawMessage `json:"payload"`
	}
)
