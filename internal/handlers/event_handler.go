package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// EventService is the interface that wraps methods for event business logic
type EventService interface {
	// Method List retrieves one page of events; params.Upcoming hides finished ones.
	List(ctx context.Context, params models.ListParams) (*models.Page[models.Event], error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, in models.EventInput) (*models.Event, error)
	Update(ctx context.Context, id int64, in models.EventInput) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventFolder is the upload folder of event images
const EventFolder = "events"

// EventHandler handles HTTP requests for events
type EventHandler struct {
	BaseHandler
	service EventService
	guards  Guards
}

// NewEventHandler creates a new event handler
func NewEventHandler(svc EventService, guards Guards) *EventHandler {
	return &EventHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all event handler routes
func (h *EventHandler) RegisterRoutes(r chi.Router) {
	g := h.guards
	image := g.Upload(upload.Route{Field: "image", Folder: EventFolder})

	r.Route("/events", func(r chi.Router) {
		r.With(g.Lenient, g.Validate(listRules, validation.Query)).Get("/", h.List)
		r.With(g.Lenient).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Strict, g.Staff)
			r.With(g.Validate(eventRules, validation.Body), image).Post("/", h.Create)
			r.With(g.Validate(eventRules, validation.Body), image).Put("/{id}", h.Update)
		})

		r.With(g.Strict, g.Admin).Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/events
// @Summary List events
// @Tags events
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size (1-100), default: 10"
// @Param upcoming query bool false "Only events that have not finished"
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Router /api/v1/events [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listParams(validation.FromContext(r.Context())))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/events/{id}
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/events/{id} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, event)
}

// Create handles POST /api/v1/events
// @Summary Create event
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Failure 400 {object} apperrors.Response "Validation failed, e.g. endDate before startDate"
// @Router /api/v1/events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := eventInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.Image = &file.URL
	}

	event, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, event)
}

// Update handles PUT /api/v1/events/{id}
// @Summary Update event
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/events/{id} [put]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := eventInput(validation.FromContext(r.Context()))
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

	event, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/v1/events/{id}
// @Summary Delete event
// @Tags events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} Response
// @Router /api/v1/events/{id} [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "event deleted")
}
