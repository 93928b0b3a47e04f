package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// UploadService is the interface that wraps methods for standalone stored files
type UploadService interface {
	// Method Remove deletes the file behind a public /uploads URL.
	//
	// Returns a 400 error for URLs of another shape and a 404 error when the file does not exist.
	Remove(ctx context.Context, rawURL string) error
}

// UploadHandler handles standalone image uploads
type UploadHandler struct {
	BaseHandler
	service UploadService
	guards  Guards
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(svc UploadService, guards Guards) *UploadHandler {
	return &UploadHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all upload handler routes
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	g := h.guards

	r.Route("/uploads", func(r chi.Router) {
		r.With(g.Strict, g.Staff, g.Upload(upload.Route{Field: "file", FolderParam: "folder", Required: true})).
			Post("/{folder}", h.Upload)
		r.With(g.Strict, g.Admin, g.Validate(deleteUploadRules, validation.Query)).
			Delete("/", h.Delete)
	})
}

// Upload handles POST /api/v1/uploads/{folder}
// @Summary Upload image
// @Description Validate, resize and store an image in the given folder
// @Tags uploads
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param folder path string true "Destination folder"
// @Param file formData file true "Image file"
// @Success 201 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 413 {object} apperrors.Response
// @Router /api/v1/uploads/{folder} [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, ok := upload.FileFromContext(r.Context())
	if !ok {
		h.RespondError(w, apperrors.Upload(http.StatusBadRequest, "missing file: file"))
		return
	}

	h.RespondJSON(w, http.StatusCreated, file)
}

// Delete handles DELETE /api/v1/uploads?url=/uploads/<folder>/<filename>
// @Summary Delete stored image
// @Tags uploads
// @Produce json
// @Security BearerAuth
// @Param url query string true "Public URL of the file"
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/uploads [delete]
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	url := validation.FromContext(r.Context()).String("url")

	if err := h.service.Remove(r.Context(), url); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "file deleted")
}
