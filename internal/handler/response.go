package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"autoport/internal/repository"
	"autoport/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a plain informational response.
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors (including resources not owned by the caller).
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Authentication failures.
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized

	// Ownership/permission errors.
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden

	// Rate limiting.
	case errors.Is(err, service.ErrOTPThrottled):
		return http.StatusTooManyRequests

	// Uniqueness conflicts.
	case errors.Is(err, service.ErrDuplicatePlate),
		errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict

	// Precondition violations: wrong status, past departure, not enough
	// seats, duplicate booking, capacity below booked count.
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusBadRequest

	// Validation errors - Bad Request.
	case errors.Is(err, service.ErrInvalidOTP),
		errors.Is(err, service.ErrInvalidPhoneNumber),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidCarID),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrCarChangeUnsupported):
		return http.StatusBadRequest

	// Default to internal server error.
	default:
		return http.StatusInternalServerError
	}
}
