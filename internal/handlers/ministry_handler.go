package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// MinistryService is the interface that wraps methods for ministry business logic
type MinistryService interface {
	List(ctx context.Context, params models.ListParams) (*models.Page[models.Ministry], error)
	Get(ctx context.Context, id int64) (*models.Ministry, error)
	Create(ctx context.Context, in models.MinistryInput) (*models.Ministry, error)
	Update(ctx context.Context, id int64, in models.MinistryInput) (*models.Ministry, error)
	Delete(ctx context.Context, id int64) error
}

// MinistryFolder is the upload folder of ministry images
const MinistryFolder = "ministries"

// MinistryHandler handles HTTP requests for ministries
type MinistryHandler struct {
	BaseHandler
	service MinistryService
	guards  Guards
}

// NewMinistryHandler creates a new ministry handler
func NewMinistryHandler(svc MinistryService, guards Guards) *MinistryHandler {
	return &MinistryHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all ministry handler routes
func (h *MinistryHandler) RegisterRoutes(r chi.Router) {
	g := h.guards
	image := g.Upload(upload.Route{Field: "image", Folder: MinistryFolder})

	r.Route("/ministries", func(r chi.Router) {
		r.With(g.Lenient, g.Validate(listRules, validation.Query)).Get("/", h.List)
		r.With(g.Lenient).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Strict, g.Staff)
			r.With(g.Validate(ministryRules, validation.Body), image).Post("/", h.Create)
			r.With(g.Validate(ministryRules, validation.Body), image).Put("/{id}", h.Update)
		})

		r.With(g.Strict, g.Admin).Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/ministries
// @Summary List ministries
// @Tags ministries
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size (1-100), default: 10"
// @Success 200 {object} Response
// @Router /api/v1/ministries [get]
func (h *MinistryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listParams(validation.FromContext(r.Context())))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/ministries/{id}
// @Summary Get ministry
// @Tags ministries
// @Produce json
// @Param id path int true "Ministry ID"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/ministries/{id} [get]
func (h *MinistryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	ministry, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, ministry)
}

// Create handles POST /api/v1/ministries
// @Summary Create ministry
// @Tags ministries
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Router /api/v1/ministries [post]
func (h *MinistryHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := ministryInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.Image = &file.URL
	}

	ministry, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, ministry)
}

// Update handles PUT /api/v1/ministries/{id}
// @Summary Update ministry
// @Tags ministries
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ministry ID"
// @Success 200 {object} Response
// @Router /api/v1/ministries/{id} [put]
func (h *MinistryHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := ministryInput(validation.FromContext(r.Context()))
	file, hasFile := upload.FileFromContext(r.Context())
	if hasFile {
		in.Image = &file.URL
	}

	id, err := idParam(r)
	if err != nil {
		discard(h.guards.Pipeline, file, hasFile)
		h.RespondError(w, err)
		return
	}

	ministry, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, ministry)
}

// Delete handles DELETE /api/v1/ministries/{id}
// @Summary Delete ministry
// @Tags ministries
// @Security BearerAuth
// @Param id path int true "Ministry ID"
// @Success 200 {object} Response
// @Router /api/v1/ministries/{id} [delete]
func (h *MinistryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "ministry deleted")
}
