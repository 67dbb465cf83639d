package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusPendingPayment OrderStatus = "PendingPayment"
	OrderStatusReady          OrderStatus = "Ready"
	OrderStatusCompleted      OrderStatus = "Completed"
	OrderStatusCancelled      OrderStatus = "Cancelled"
	OrderStatusExpired        OrderStatus = "Expired"

	DefaultOrderExpiry = 15 * time.Minute
)

type (
	OrderStatus string

	Order struct {
		ID          uuid.UUID   `json:"id"`
		UserID      uuid.UUID   `json:"user_id"`
		Product     string      `json:"product"`
		Quantity    int         `json:"quantity"`
		Price       float64     `json:"price"`
		Status      OrderStatus `json:"status"`
		CreatedAt   time.Time   `json:"created_at"`
		ExpiresAt   time.Time   `json:"expires_at"`
		CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	}
)

func ParseOrderStatus(raw string) (OrderStatus, bool) {
	switch OrderStatus(raw) {
	case OrderStatusPending, OrderStatusPendingPayment, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusExpired:
		return OrderStatus(raw), true
	default:
		return "", false
	}
}

// CancellableOnUserInactive reports whether a user-inactivation cascade may
// cancel this order.
func (o *Order) CancellableOnUserInactive() bool {
	switch o.Status {
	case OrderStatusPending, OrderStatusPendingPayment, OrderStatusReady:
		return true
	default:
		return false
	}
}

// Expirable reports whether the expiry scanner may transition this order.
// Only orders awaiting payment or pickup expire.
func (o *Order) Expirable(now time.Time) bool {
	if o.Status != OrderStatusPendingPayment && o.Status != OrderStatusReady {
		return false
	}

	return o.ExpiresAt.Before(now)
}

func (o *Order) Cancel(at time.Time) {
	t := at
	o.Status = OrderStatusCancelled
	o.CancelledAt = &t
}
