package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// PastorService is the interface that wraps methods for pastor business logic
type PastorService interface {
	List(ctx context.Context, params models.ListParams) (*models.Page[models.Pastor], error)
	Get(ctx context.Context, id int64) (*models.Pastor, error)
	Create(ctx context.Context, in models.PastorInput) (*models.Pastor, error)
	Update(ctx context.Context, id int64, in models.PastorInput) (*models.Pastor, error)
	Delete(ctx context.Context, id int64) error
}

// PastorFolder is the upload folder of pastor photos
const PastorFolder = "pastors"

// PastorHandler handles HTTP requests for pastors
type PastorHandler struct {
	BaseHandler
	service PastorService
	guards  Guards
}

// NewPastorHandler creates a new pastor handler
func NewPastorHandler(svc PastorService, guards Guards) *PastorHandler {
	return &PastorHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all pastor handler routes
func (h *PastorHandler) RegisterRoutes(r chi.Router) {
	g := h.guards
	image := g.Upload(upload.Route{Field: "photo", Folder: PastorFolder})

	r.Route("/pastors", func(r chi.Router) {
		r.With(g.Lenient, g.Validate(listRules, validation.Query)).Get("/", h.List)
		r.With(g.Lenient).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Strict, g.Staff)
			r.With(g.Validate(pastorRules, validation.Body), image).Post("/", h.Create)
			r.With(g.Validate(pastorRules, validation.Body), image).Put("/{id}", h.Update)
		})

		r.With(g.Strict, g.Admin).Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/pastors
// @Summary List pastors
// @Tags pastors
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size (1-100), default: 10"
// @Success 200 {object} Response
// @Router /api/v1/pastors [get]
func (h *PastorHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listParams(validation.FromContext(r.Context())))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/pastors/{id}
// @Summary Get pastor
// @Tags pastors
// @Produce json
// @Param id path int true "Pastor ID"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/pastors/{id} [get]
func (h *PastorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	pastor, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, pastor)
}

// Create handles POST /api/v1/pastors
// @Summary Create pastor
// @Tags pastors
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Router /api/v1/pastors [post]
func (h *PastorHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := pastorInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.Photo = &file.URL
	}

	pastor, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, pastor)
}

// Update handles PUT /api/v1/pastors/{id}
// @Summary Update pastor
// @Tags pastors
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Pastor ID"
// @Success 200 {object} Response
// @Router /api/v1/pastors/{id} [put]
func (h *PastorHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := pastorInput(validation.FromContext(r.Context()))
	file, hasFile := upload.FileFromContext(r.Context())
	if hasFile {
		in.Photo = &file.URL
	}

	id, err := idParam(r)
	if err != nil {
		discard(h.guards.Pipeline, file, hasFile)
		h.RespondError(w, err)
		return
	}

	pastor, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, pastor)
}

// Delete handles DELETE /api/v1/pastors/{id}
// @Summary Delete pastor
// @Tags pastors
// @Security BearerAuth
// @Param id path int true "Pastor ID"
// @Success 200 {object} Response
// @Router /api/v1/pastors/{id} [delete]
func (h *PastorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "pastor deleted")
}
