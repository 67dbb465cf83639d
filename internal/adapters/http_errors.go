package adapters

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mjolner/svc-commerce-events/internal/adapters/http/handlers"
	"github.com/mjolner/svc-commerce-events/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, statusCode int, errorType, message, details string) {
	writeJSON(w, statusCode, handlers.ErrorResponse{
		Error:      errorType,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	})
}

// writeDomainError maps a service error to its HTTP shape. A caller that
// already hung up gets the nginx-style 499 no matter what the error says.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if r.Context().Err() != nil {
		writeErrorResponse(w, domain.StatusClientClosedRequest, "request_cancelled", "request cancelled by caller", r.Context().Err().Error())

		return
	}

	statusCode := domain.StatusCodeFor(err)

	code := "internal_server_error"
	message := "an unexpected error occurred"

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message
	} else if statusCode != http.StatusInternalServerError {
		message = err.Error()
	}

	details := ""
	if statusCode != http.StatusInternalServerError {
		details = err.Error()
	}

	writeErrorResponse(w, statusCode, code, message, details)
}
