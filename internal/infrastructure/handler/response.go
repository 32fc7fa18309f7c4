package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
)

func sendJSON(w http.ResponseWriter, log logger.Logger, statusCode int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	sendJSON(w, log, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}, requestID)
}

// sendDomainError maps a repository failure to its HTTP status
func sendDomainError(w http.ResponseWriter, log logger.Logger, err error, requestID string) {
	fields := map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		log.Warn("Resource not found", fields)
		sendErrorResponse(w, log, "Not found", err.Error(), http.StatusNotFound, requestID)
	case errors.Is(err, apperrors.ErrValidation):
		log.Warn("Validation failed", fields)
		sendErrorResponse(w, log, "Invalid request", err.Error(), http.StatusBadRequest, requestID)
	case errors.Is(err, apperrors.ErrDuplicate):
		log.Warn("Duplicate resource", fields)
		sendErrorResponse(w, log, "Already exists", err.Error(), http.StatusConflict, requestID)
	default:
		log.Error("Unexpected repository error", fields)
		sendErrorResponse(w, log, "Internal server error",
			"An unexpected error occurred while processing the request",
			http.StatusInternalServerError, requestID)
	}
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}
