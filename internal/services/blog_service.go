package services

import (
	"context"
	"strconv"
	"time"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/validation"
	"go.uber.org/zap"
)

// BlogRepository is the interface that wraps methods for blogs table data access
type BlogRepository interface {
	// Method List retrieves one page of blog posts and the total number of matching posts.
	//
	// Unpublished posts are only part of the result when params.IncludeDrafts is set.
	List(ctx context.Context, params models.ListParams) ([]models.Blog, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	// Method Create inserts the post and sets blog.ID.
	//
	// A slug that is already taken gives an error wrapping repositories.ErrDuplicate.
	Create(ctx context.Context, blog *models.Blog) error
	// Method Update replaces the post's fields and returns the image URL the update dropped, if any.
	Update(ctx context.Context, id int64, in models.BlogInput) (*string, error)
	// Method Delete removes the post and returns its image URL, if any.
	Delete(ctx context.Context, id int64) (*string, error)
}

const (
	msgBlogNotFound = "blog post not found"
	msgSlugTaken    = "slug already exists"
)

type blogService struct {
	repo      BlogRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
	now       func() time.Time
}

// NewBlogService creates a new blog service
func NewBlogService(repo BlogRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *blogService {
	return &blogService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
		now:       time.Now,
	}
}

// List returns one page of posts. Drafts are listed for staff only.
func (s *blogService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Blog], error) {
	params.IncludeDrafts = auth.IsStaff(ctx)

	blogs, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list blogs", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	return &models.Page[models.Blog]{Items: blogs, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// Get retrieves a post by numeric ID or by slug.
// Drafts are reported as missing to everyone but staff.
func (s *blogService) Get(ctx context.Context, idOrSlug string) (*models.Blog, error) {
	var (
		blog *models.Blog
		err  error
	)
	if id, convErr := strconv.ParseInt(idOrSlug, 10, 64); convErr == nil {
		blog, err = s.repo.GetByID(ctx, id)
	} else {
		blog, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, mapRepoError(err, msgBlogNotFound, msgSlugTaken)
	}

	if !blog.Published && !auth.IsStaff(ctx) {
		return nil, apperrors.NotFound(msgBlogNotFound)
	}

	return blog, nil
}

// Create stores a new post.
// When the insert fails the freshly uploaded image is deleted again.
func (s *blogService) Create(ctx context.Context, in models.BlogInput) (*models.Blog, error) {
	in, err := s.prepare(in)
	if err != nil {
		s.images.remove(in.FeaturedImage)
		return nil, err
	}

	blog := &models.Blog{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Author:        in.Author,
		Published:     in.Published,
		PublishedAt:   in.PublishedAt,
		FeaturedImage: in.FeaturedImage,
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		s.images.remove(in.FeaturedImage)
		s.logger.Warn("failed to create blog", zap.String("slug", in.Slug), zap.Error(err))
		return nil, mapRepoError(err, msgBlogNotFound, msgSlugTaken)
	}

	s.logger.Info("blog created", zap.Int64("id", blog.ID), zap.String("slug", blog.Slug))
	return s.reload(ctx, blog)
}

// Update replaces a post.
// The image the update dropped is deleted after the change is committed.
func (s *blogService) Update(ctx context.Context, id int64, in models.BlogInput) (*models.Blog, error) {
	in, err := s.prepare(in)
	if err != nil {
		s.images.remove(in.FeaturedImage)
		return nil, err
	}

	dropped, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.images.remove(in.FeaturedImage)
		return nil, mapRepoError(err, msgBlogNotFound, msgSlugTaken)
	}
	s.images.remove(dropped)

	return s.reload(ctx, &models.Blog{ID: id})
}

// Delete removes a post and its image
func (s *blogService) Delete(ctx context.Context, id int64) error {
	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, msgBlogNotFound, msgSlugTaken)
	}
	s.images.remove(image)

	s.logger.Info("blog deleted", zap.Int64("id", id))
	return nil
}

// prepare sanitizes the body, derives a missing slug and stamps the publication time
func (s *blogService) prepare(in models.BlogInput) (models.BlogInput, error) {
	in.Content = s.sanitizer.Sanitize(in.Content)
	if in.Content == "" {
		return in, apperrors.Invalid([]validation.Violation{{Field: "content", Message: "content is empty after sanitizing"}})
	}

	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		return in, apperrors.Invalid([]validation.Violation{{Field: "slug", Message: "cannot derive a slug from the title"}})
	}

	in.Excerpt = optional(in.Excerpt)
	in.Author = optional(in.Author)

	if in.Published && in.PublishedAt == nil {
		now := s.now().UTC().Truncate(time.Second)
		in.PublishedAt = &now
	}
	return in, nil
}

func (s *blogService) reload(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	stored, err := s.repo.GetByID(ctx, blog.ID)
	if err != nil {
		return nil, mapRepoError(err, msgBlogNotFound, msgSlugTaken)
	}
	return stored, nil
}
