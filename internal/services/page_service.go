package services

import (
	"context"
	"slices"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/validation"
	"go.uber.org/zap"
)

// PageRepository is the interface that wraps methods for pages table data access
type PageRepository interface {
	GetByKey(ctx context.Context, key string) (*models.PageContent, error)
	Upsert(ctx context.Context, key string, in models.PageContentInput) (*string, error)
}

const msgPageNotFound = "page not found"

type pageService struct {
	repo      PageRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
}

// NewPageService creates a new content page service
func NewPageService(repo PageRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *pageService {
	return &pageService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
	}
}

// Get returns the page under key. Unknown keys and pages never written are both 404.
func (s *pageService) Get(ctx context.Context, key string) (*models.PageContent, error) {
	if !slices.Contains(models.PageKeys, key) {
		return nil, apperrors.NotFound(msgPageNotFound)
	}

	page, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, mapRepoError(err, msgPageNotFound, msgPageNotFound)
	}
	return page, nil
}

// Update writes the page under key, creating it on first use
func (s *pageService) Update(ctx context.Context, key string, in models.PageContentInput) (*models.PageContent, error) {
	if !slices.Contains(models.PageKeys, key) {
		s.images.remove(in.Image)
		return nil, apperrors.NotFound(msgPageNotFound)
	}

	in.Content = s.sanitizer.Sanitize(in.Content)
	if in.Content == "" {
		s.images.remove(in.Image)
		return nil, apperrors.Invalid([]validation.Violation{{Field: "content", Message: "content is empty after sanitizing"}})
	}

	dropped, err := s.repo.Upsert(ctx, key, in)
	if err != nil {
		s.images.remove(in.Image)
		return nil, mapRepoError(err, msgPageNotFound, msgPageNotFound)
	}
	s.images.remove(dropped)

	s.logger.Info("page updated", zap.String("key", key))
	return s.Get(ctx, key)
}
