package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusClientClosedRequest is the nginx-style status for a caller that
// disconnected before the command finished.
const StatusClientClosedRequest = 499

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOutboxRowNotFound  = errors.New("outbox row not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrRequestCancelled   = errors.New("request cancelled by caller")
	ErrPeerUnavailable    = errors.New("peer service unavailable")
	ErrInternalServer     = errors.New("internal server error")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrCircuitBreakerOpen = errors.New("circuit breaker open")
	ErrCacheUnavailable   = errors.New("cache service unavailable")
)

type (
	DomainError struct {
		Code       string
		Message    string
		StatusCode int
		Cause      error
		Details    map[string]any
	}
)

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

func NewDomainError(code, message string, statusCode int, cause error) *DomainError {
	return &DomainError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
		Details:    make(map[string]any),
	}
}

func (e *DomainError) WithDetails(key string, value any) *DomainError {
	e.Details[key] = value
	return e
}

func NewValidationError(message string, cause error) *DomainError {
	return NewDomainError(
		"VALIDATION_FAILED",
		message,
		http.StatusBadRequest,
		cause,
	)
}

func NewConflictError(message string, cause error) *DomainError {
	return NewDomainError(
		"CONFLICT",
		message,
		http.StatusConflict,
		cause,
	)
}

func NewNotFoundError(resource, id string, cause error) *DomainError {
	return NewDomainError(
		"NOT_FOUND",
		fmt.Sprintf("%s %s not found", resource, id),
		http.StatusNotFound,
		cause,
	).WithDetails("resource", resource).WithDetails("id", id)
}

func NewCancelledError(cause error) *DomainError {
	return NewDomainError(
		"REQUEST_CANCELLED",
		"request cancelled by caller",
		StatusClientClosedRequest,
		cause,
	)
}

func NewServiceUnavailableError(message string, cause error) *DomainError {
	return NewDomainError(
		"SERVICE_UNAVAILABLE",
		message,
		http.StatusServiceUnavailable,
		cause,
	)
}

func NewRateLimitError(message string) *DomainError {
	return NewDomainError(
		"RATE_LIMITING_EXCEEDED",
		message,
		http.StatusTooManyRequests,
		ErrRateLimitExceeded,
	)
}

func NewInternalServerError(message string, cause error) *DomainError {
	return NewDomainError(
		"INTERNAL_SERVER_ERROR",
		message,
		http.StatusInternalServerError,
		cause,
	)
}

// StatusCodeFor maps any error to its HTTP status, defaulting to 500 for
// errors that carry no DomainError in their chain.
func StatusCodeFor(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrOutboxRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRequestCancelled):
		return StatusClientClosedRequest
	case errors.Is(err, ErrPeerUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
