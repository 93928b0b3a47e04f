package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// SermonService is the interface that wraps methods for sermon business logic
type SermonService interface {
	List(ctx context.Context, params models.ListParams) (*models.Page[models.Sermon], error)
	Get(ctx context.Context, id int64) (*models.Sermon, error)
	Create(ctx context.Context, in models.SermonInput) (*models.Sermon, error)
	Update(ctx context.Context, id int64, in models.SermonInput) (*models.Sermon, error)
	Delete(ctx context.Context, id int64) error
}

// SermonFolder is the upload folder of sermon thumbnails
const SermonFolder = "sermons"

// SermonHandler handles HTTP requests for sermons
type SermonHandler struct {
	BaseHandler
	service SermonService
	guards  Guards
}

// NewSermonHandler creates a new sermon handler
func NewSermonHandler(svc SermonService, guards Guards) *SermonHandler {
	return &SermonHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all sermon handler routes
func (h *SermonHandler) RegisterRoutes(r chi.Router) {
	g := h.guards
	thumbnail := g.Upload(upload.Route{Field: "thumbnail", Folder: SermonFolder})

	r.Route("/sermons", func(r chi.Router) {
		r.With(g.Lenient, g.Validate(listRules, validation.Query)).Get("/", h.List)
		r.With(g.Lenient).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Strict, g.Staff)
			r.With(g.Validate(sermonRules, validation.Body), thumbnail).Post("/", h.Create)
			r.With(g.Validate(sermonRules, validation.Body), thumbnail).Put("/{id}", h.Update)
		})

		r.With(g.Strict, g.Admin).Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/sermons
// @Summary List sermons
// @Tags sermons
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size (1-100), default: 10"
// @Success 200 {object} Response
// @Router /api/v1/sermons [get]
func (h *SermonHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listParams(validation.FromContext(r.Context())))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/sermons/{id}
// @Summary Get sermon
// @Tags sermons
// @Produce json
// @Param id path int true "Sermon ID"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/sermons/{id} [get]
func (h *SermonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	sermon, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, sermon)
}

// Create handles POST /api/v1/sermons
// @Summary Create sermon
// @Tags sermons
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Router /api/v1/sermons [post]
func (h *SermonHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := sermonInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.Thumbnail = &file.URL
	}

	sermon, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, sermon)
}

// Update handles PUT /api/v1/sermons/{id}
// @Summary Update sermon
// @Tags sermons
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sermon ID"
// @Success 200 {object} Response
// @Router /api/v1/sermons/{id} [put]
func (h *SermonHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := sermonInput(validation.FromContext(r.Context()))
	file, hasFile := upload.FileFromContext(r.Context())
	if hasFile {
		in.Thumbnail = &file.URL
	}

	id, err := idParam(r)
	if err != nil {
		discard(h.guards.Pipeline, file, hasFile)
		h.RespondError(w, err)
		return
	}

	sermon, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, sermon)
}

// Delete handles DELETE /api/v1/sermons/{id}
// @Summary Delete sermon
// @Tags sermons
// @Security BearerAuth
// @Param id path int true "Sermon ID"
// @Success 200 {object} Response
// @Router /api/v1/sermons/{id} [delete]
func (h *SermonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "sermon deleted")
}
