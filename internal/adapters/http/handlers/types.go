package handlers

import (
	"time"

	"github.com/google/uuid"
)

// Dependency status values reported by the health endpoints.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

type (
	ErrorResponse struct {
		Error      string    `json:"error"`
		Message    string    `json:"message"`
		Details    string    `json:"details,omitempty"`
		StatusCode int       `json:"status_code"`
		Timestamp  time.Time `json:"timestamp"`
	}

	CreateUserRequest struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	ChangeUserStatusRequest struct {
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
	}

	UserResponse struct {
		ID        uuid.UUID `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	CreateOrderRequest struct {
		UserID   uuid.UUID `json:"user_id"`
		Product  string    `json:"product"`
		Quantity int       `json:"quantity"`
		Price    float64   `json:"price"`
	}

	UpdateOrderStatusRequest struct {
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
	}

	OrderResponse struct {
		ID          uuid.UUID  `json:"id"`
		UserID      uuid.UUID  `json:"user_id"`
		Product     string     `json:"product"`
		Quantity    int        `json:"quantity"`
		Price       float64    `json:"price"`
		Status      string     `json:"status"`
		CreatedAt   time.Time  `json:"created_at"`
		ExpiresAt   time.Time  `json:"expires_at"`
		CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	}

	OutboxEventResponse struct {
		ID           uuid.UUID  `json:"id"`
		EventType    string     `json:"event_type"`
		AggregateID  uuid.UUID  `json:"aggregate_id"`
		Payload      any        `json:"payload"`
		RetryCount   int        `json:"retry_count"`
		ErrorDetails *string    `json:"error_details,omitempty"`
		CreatedAt    time.Time  `json:"created_at"`
		SentAt       *time.Time `json:"sent_at,omitempty"`
	}

	DependencyCheck struct {
		Status       string     `json:"status"`
		ResponseTime *float32   `json:"response_time,omitempty"`
		LastChecked  *time.Time `json:"last_checked,omitempty"`
		Error        *string    `json:"error,omitempty"`
	}

	DependencyChecks struct {
		Storage DependencyCheck `json:"storage"`
		Cache   DependencyCheck `json:"cache"`
		Queue   DependencyCheck `json:"queue"`
	}

	LivenessResponse struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Version   string    `json:"version"`
	}

	ReadinessResponse struct {
		Status    string           `json:"status"`
		Timestamp time.Time        `json:"timestamp"`
		Version   string           `json:"version"`
		Checks    DependencyChecks `json:"checks"`
	}

	HealthResponse struct {
		Status    string           `json:"status"`
		Timestamp time.Time        `json:"timestamp"`
		Version   string           `json:"version"`
		Uptime    float32          `json:"uptime"`
		Checks    DependencyChecks `json:"checks"`
	}
)
