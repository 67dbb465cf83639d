package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventUserCreated        EventType = "users.created"
	EventUserStatusChanged  EventType = "users.status-changed"
	EventOrderCreated       EventType = "orders.created"
	EventOrderStatusChanged EventType = "orders.status-changed"
	EventOrderCancelled     EventType = "orders.cancelled"

	DeadLetterReasonMaxRetries = "MaxRetriesExceeded"
)

type (
	EventType string

	// OutboxEvent is a durable record of an intended domain event, written in
	// the same transaction as the domain change that produced it. The row is
	// eligible for delivery while SentAt is nil; LockedUntil and LockID fence
	// concurrent drainers.
	OutboxEvent struct {
		ID           uuid.UUID  `json:"id"`
		EventType    EventType  `json:"event_type"`
		AggregateID  uuid.UUID  `json:"aggregate_id"`
		Payload      any        `json:"payload"`
		RetryCount   int        `json:"retry_count"`
		ErrorDetails *string    `json:"error_details,omitempty"`
		CreatedAt    time.Time  `json:"created_at"`
		SentAt       *time.Time `json:"sent_at,omitempty"`
		LockedUntil  *time.Time `json:"locked_until,omitempty"`
		LockID       *uuid.UUID `json:"lock_id,omitempty"`
	}

	// DeadLetterEnvelope wraps an exhausted event for the dead-letter topic.
	DeadLetterEnvelope struct {
		ID         uuid.UUID `json:"id"`
		EventType  EventType `json:"eventType"`
		Payload    any       `json:"payload"`
		RetryCount int       `json:"retryCount"`
		OccurredAt time.Time `json:"occurredAt"`
		Reason     string    `json:"reason"`
	}

	// PublishOutcome classifies a delivery attempt so the drainer can settle
	// the row: retry on transient failures, stop the cycle on permanent ones.
	PublishOutcome int
)

const (
	PublishSuccess PublishOutcome = iota
	PublishTransientFailure
	PublishPermanentFailure
)

func (o PublishOutcome) String() string {
	switch o {
	case PublishSuccess:
		return "success"
	case PublishTransientFailure:
		return "transient_failure"
	case PublishPermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

func (e *OutboxEvent) Pending() bool {
	return e.SentAt == nil
}

func (e *OutboxEvent) CanRetry(maxRetries int) bool {
	return e.RetryCount < maxRetries
}

// NewDeadLetterEnvelope quarantines an event whose retries are exhausted.
func NewDeadLetterEnvelope(e *OutboxEvent, occurredAt time.Time) DeadLetterEnvelope {
	return DeadLetterEnvelope{
		ID:         e.ID,
		EventType:  e.EventType,
		Payload:    e.Payload,
		RetryCount: e.RetryCount,
		OccurredAt: occurredAt,
		Reason:     DeadLetterReasonMaxRetries,
	}
}
