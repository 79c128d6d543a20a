// Package httputil maps domain errors to JSON responses and parses common query parameters.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/phivault/internal/errors"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleErrorGin maps err to a status code and writes an ErrorResponse. Internal failures,
// decryption errors included, are reported without detail; the full chain is logged.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var statusCode int
	var resp ErrorResponse

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		statusCode = http.StatusNotFound
		resp = ErrorResponse{Error: "not_found", Message: "The requested resource was not found"}

	case apperrors.Is(err, apperrors.ErrConflict):
		statusCode = http.StatusConflict
		resp = ErrorResponse{Error: "conflict", Message: "A conflict occurred with existing data"}

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		statusCode = http.StatusUnprocessableEntity
		resp = ErrorResponse{Error: "invalid_input", Message: err.Error()}

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		resp = ErrorResponse{Error: "unauthorized", Message: "Authentication is required"}

	case apperrors.Is(err, apperrors.ErrForbidden):
		statusCode = http.StatusForbidden
		resp = ErrorResponse{Error: "forbidden", Message: "You don't have permission to access this resource"}

	case apperrors.Is(err, apperrors.ErrUnavailable):
		statusCode = http.StatusServiceUnavailable
		resp = ErrorResponse{Error: "unavailable", Message: "A dependency is unavailable"}

	default:
		statusCode = http.StatusInternalServerError
		resp = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", statusCode),
			slog.String("error_code", resp.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, resp)
}

// HandleBadRequestGin writes a 400 for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin writes a 422 for requests that parse but fail validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
