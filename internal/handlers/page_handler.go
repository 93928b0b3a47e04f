package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// PageService is the interface that wraps methods for the singleton content pages
type PageService interface {
	// Method Get returns the page stored under key (mission, vision or history).
	//
	// Returns a 404 error for unknown keys and for pages never written.
	Get(ctx context.Context, key string) (*models.PageContent, error)

	// Method Update writes the page under key, creating it on first use.
	Update(ctx context.Context, key string, in models.PageContentInput) (*models.PageContent, error)
}

// PageFolder is the upload folder of page images
const PageFolder = "pages"

// PageHandler handles the mission, vision and history pages
type PageHandler struct {
	BaseHandler
	service PageService
	guards  Guards
}

// NewPageHandler creates a new page handler
func NewPageHandler(svc PageService, guards Guards) *PageHandler {
	return &PageHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all page handler routes
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	g := h.guards

	r.Route("/pages", func(r chi.Router) {
		r.With(g.Lenient).Get("/{key}", h.Get)
		r.With(g.Strict, g.Staff, g.Validate(pageRules, validation.Body), g.Upload(upload.Route{Field: "image", Folder: PageFolder})).
			Put("/{key}", h.Update)
	})
}

// Get handles GET /api/v1/pages/{key}
// @Summary Get content page
// @Tags pages
// @Produce json
// @Param key path string true "mission, vision or history"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/pages/{key} [get]
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Update handles PUT /api/v1/pages/{key}
// @Summary Write content page
// @Tags pages
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param key path string true "mission, vision or history"
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/pages/{key} [put]
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := pageInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.Image = &file.URL
	}

	page, err := h.service.Update(r.Context(), chi.URLParam(r, "key"), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}
