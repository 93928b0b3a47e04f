package services

import (
	"context"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

// PastorRepository is the interface that wraps methods for pastors table data access
type PastorRepository interface {
	List(ctx context.Context, params models.ListParams) ([]models.Pastor, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Pastor, error)
	Create(ctx context.Context, pastor *models.Pastor) error
	Update(ctx context.Context, id int64, in models.PastorInput) (*string, error)
	Delete(ctx context.Context, id int64) (*string, error)
}

const msgPastorNotFound = "pastor not found"

type pastorService struct {
	repo      PastorRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
}

// NewPastorService creates a new pastor service
func NewPastorService(repo PastorRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *pastorService {
	return &pastorService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
	}
}

func (s *pastorService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Pastor], error) {
	pastors, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list pastors", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	return &models.Page[models.Pastor]{Items: pastors, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

func (s *pastorService) Get(ctx context.Context, id int64) (*models.Pastor, error) {
	pastor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, msgPastorNotFound, msgPastorNotFound)
	}
	return pastor, nil
}

func (s *pastorService) Create(ctx context.Context, in models.PastorInput) (*models.Pastor, error) {
	in = s.prepare(in)

	pastor := &models.Pastor{
		Name:         in.Name,
		Title:        in.Title,
		Bio:          in.Bio,
		Email:        in.Email,
		Photo:        in.Photo,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.repo.Create(ctx, pastor); err != nil {
		s.images.remove(in.Photo)
		return nil, mapRepoError(err, msgPastorNotFound, msgPastorNotFound)
	}

	s.logger.Info("pastor created", zap.Int64("id", pastor.ID))
	return s.Get(ctx, pastor.ID)
}

func (s *pastorService) Update(ctx context.Context, id int64, in models.PastorInput) (*models.Pastor, error) {
	in = s.prepare(in)

	dropped, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.images.remove(in.Photo)
		return nil, mapRepoError(err, msgPastorNotFound, msgPastorNotFound)
	}
	s.images.remove(dropped)

	return s.Get(ctx, id)
}

func (s *pastorService) Delete(ctx context.Context, id int64) error {
	photo, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, msgPastorNotFound, msgPastorNotFound)
	}
	s.images.remove(photo)

	s.logger.Info("pastor deleted", zap.Int64("id", id))
	return nil
}

func (s *pastorService) prepare(in models.PastorInput) models.PastorInput {
	if in.Bio != nil {
		clean := s.sanitizer.Sanitize(*in.Bio)
		in.Bio = &clean
	}
	in.Bio = optional(in.Bio)
	in.Title = optional(in.Title)
	in.Email = optional(in.Email)
	return in
}
