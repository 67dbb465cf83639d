package domain

import "github.com/google/uuid"

type (
	// PublishOutboxEventResult reports how one delivery attempt went so the
	// drainer can settle the row.
	PublishOutboxEventResult struct {
		EventID      uuid.UUID
		Outcome      PublishOutcome
		DeadLettered bool
		Error        string
	}

	// CancelUserOrdersResult reports the orders a user-inactivation cascade
	// cancelled.
	CancelUserOrdersResult struct {
		UserID          uuid.UUID
		CancelledOrders []uuid.UUID
	}

	// ExpireOrdersResult reports the orders one scanner sweep expired.
	ExpireOrdersResult struct {
		ExpiredOrders []uuid.UUID
	}

	// UserStatusChangeResult carries the user after a status command together
	// with whether the command actually changed anything.
	UserStatusChangeResult struct {
		User    *User
		Changed bool
	}

	// OrderStatusChangeResult is the order-side counterpart.
	OrderStatusChangeResult struct {
		Order   *Order
		Changed bool
	}
)
