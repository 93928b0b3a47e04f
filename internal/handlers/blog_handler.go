package handlers

import (
	"context"
	"net/http"

	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/upload"
	"github.com/churchsite/backend/internal/validation"
	"github.com/go-chi/chi/v5"
)

// BlogService is the interface that wraps methods for blog business logic
type BlogService interface {
	// Method List retrieves one page of posts. Drafts are included for staff identities only.
	List(ctx context.Context, params models.ListParams) (*models.Page[models.Blog], error)
	// Method Get retrieves a post by numeric ID or slug.
	//
	// Unpublished posts are reported as not found unless the caller is staff.
	Get(ctx context.Context, idOrSlug string) (*models.Blog, error)
	Create(ctx context.Context, in models.BlogInput) (*models.Blog, error)
	Update(ctx context.Context, id int64, in models.BlogInput) (*models.Blog, error)
	Delete(ctx context.Context, id int64) error
}

// BlogFolder is the upload folder of featured images
const BlogFolder = "blog"

// BlogHandler handles HTTP requests for blog posts
type BlogHandler struct {
	BaseHandler
	service BlogService
	guards  Guards
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(svc BlogService, guards Guards) *BlogHandler {
	return &BlogHandler{
		BaseHandler: BaseHandler{Logger: guards.Logger},
		service:     svc,
		guards:      guards,
	}
}

// RegisterRoutes registers all blog handler routes
func (h *BlogHandler) RegisterRoutes(r chi.Router) {
	g := h.guards
	image := g.Upload(upload.Route{Field: "featuredImage", Folder: BlogFolder})

	r.Route("/blogs", func(r chi.Router) {
		r.With(g.Lenient, g.Validate(listRules, validation.Query)).Get("/", h.List)
		r.With(g.Lenient).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Strict, g.Staff)
			r.With(g.Validate(blogRules, validation.Body), image).Post("/", h.Create)
			r.With(g.Validate(blogRules, validation.Body), image).Put("/{id}", h.Update)
		})

		r.With(g.Strict, g.Admin).Delete("/{id}", h.Delete)
	})
}

// List handles GET /api/v1/blogs
// @Summary List blog posts
// @Description Get one page of blog posts, newest first. Staff also see drafts.
// @Tags blogs
// @Produce json
// @Param page query int false "Page number, default: 1"
// @Param limit query int false "Page size (1-100), default: 10"
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 500 {object} apperrors.Response
// @Router /api/v1/blogs [get]
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), listParams(validation.FromContext(r.Context())))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// Get handles GET /api/v1/blogs/{id}
// @Summary Get blog post
// @Description Get a blog post by ID or slug
// @Tags blogs
// @Produce json
// @Param id path string true "Post ID or slug"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/blogs/{id} [get]
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	blog, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, blog)
}

// Create handles POST /api/v1/blogs
// @Summary Create blog post
// @Description Create a blog post from a JSON or multipart body with an optional featuredImage file
// @Tags blogs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 401 {object} apperrors.Response
// @Failure 403 {object} apperrors.Response
// @Failure 409 {object} apperrors.Response "Slug already exists"
// @Failure 413 {object} apperrors.Response
// @Router /api/v1/blogs [post]
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := blogInput(validation.FromContext(r.Context()))
	if file, ok := upload.FileFromContext(r.Context()); ok {
		in.FeaturedImage = &file.URL
	}

	blog, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, blog)
}

// Update handles PUT /api/v1/blogs/{id}
// @Summary Update blog post
// @Description Replace a blog post. A new featuredImage replaces the stored one; removeImage=true clears it.
// @Tags blogs
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} Response
// @Failure 400 {object} apperrors.Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/blogs/{id} [put]
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	in := blogInput(validation.FromContext(r.Context()))
	file, hasFile := upload.FileFromContext(r.Context())
	if hasFile {
		in.FeaturedImage = &file.URL
	}

	id, err := idParam(r)
	if err != nil {
		discard(h.guards.Pipeline, file, hasFile)
		h.RespondError(w, err)
		return
	}

	blog, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, blog)
}

// Delete handles DELETE /api/v1/blogs/{id}
// @Summary Delete blog post
// @Description Delete a blog post and its featured image (admin only)
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} Response
// @Failure 403 {object} apperrors.Response
// @Failure 404 {object} apperrors.Response
// @Router /api/v1/blogs/{id} [delete]
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.RespondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondError(w, err)
		return
	}

	h.RespondMessage(w, http.StatusOK, "blog post deleted")
}

// discard removes a stored upload that a rejected request will never reference
func discard(p *upload.Pipeline, file *upload.ProcessedFile, ok bool) {
	if !ok || p == nil {
		return
	}
	_, _ = p.Storage().Delete(file.Path)
}
