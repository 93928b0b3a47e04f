// Package handlers exposes the content resources over HTTP. Every route is assembled from
// the shared stages: authentication, authorization, validation, upload, then the handler.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// Response is the body of every successful request
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON sends a successful JSON response wrapping data
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	h.write(w, status, Response{Success: true, Data: data})
}

// RespondMessage sends a successful JSON response without data
func (h *BaseHandler) RespondMessage(w http.ResponseWriter, status int, message string) {
	h.write(w, status, Response{Success: true, Message: message})
}

// RespondError sends an error JSON response.
// *apperrors.Error values keep their status; anything else becomes a 500.
func (h *BaseHandler) RespondError(w http.ResponseWriter, err error) {
	apperrors.Write(w, h.Logger, err)
}

func (h *BaseHandler) write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// idParam parses the numeric {id} URL parameter
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.BadRequest("invalid id")
	}
	return id, nil
}
