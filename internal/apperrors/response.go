package apperrors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Response is the body written for every failed request
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
}

// Write renders err as a JSON error response.
// Errors that are not *Error become a generic 500; 5xx errors are logged.
func Write(w http.ResponseWriter, logger *zap.Logger, err error) {
	appErr, ok := As(err)
	if !ok {
		appErr = Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("kind", string(appErr.Kind)),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	if encErr := json.NewEncoder(w).Encode(Response{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Details,
	}); encErr != nil && logger != nil {
		logger.Error("failed to encode error response", zap.Error(encErr))
	}
}
