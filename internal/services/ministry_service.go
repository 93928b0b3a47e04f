package services

import (
	"context"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

// MinistryRepository is the interface that wraps methods for ministries table data access
type MinistryRepository interface {
	List(ctx context.Context, params models.ListParams) ([]models.Ministry, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Ministry, error)
	Create(ctx context.Context, ministry *models.Ministry) error
	Update(ctx context.Context, id int64, in models.MinistryInput) (*string, error)
	Delete(ctx context.Context, id int64) (*string, error)
}

const msgMinistryNotFound = "ministry not found"

type ministryService struct {
	repo      MinistryRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
}

// NewMinistryService creates a new ministry service
func NewMinistryService(repo MinistryRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *ministryService {
	return &ministryService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
	}
}

func (s *ministryService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Ministry], error) {
	ministries, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list ministries", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	return &models.Page[models.Ministry]{Items: ministries, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

func (s *ministryService) Get(ctx context.Context, id int64) (*models.Ministry, error) {
	ministry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, msgMinistryNotFound, msgMinistryNotFound)
	}
	return ministry, nil
}

func (s *ministryService) Create(ctx context.Context, in models.MinistryInput) (*models.Ministry, error) {
	in = s.prepare(in)

	ministry := &models.Ministry{
		Name:         in.Name,
		Description:  in.Description,
		Leader:       in.Leader,
		MeetingTime:  in.MeetingTime,
		ContactEmail: in.ContactEmail,
		Image:        in.Image,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.repo.Create(ctx, ministry); err != nil {
		s.images.remove(in.Image)
		return nil, mapRepoError(err, msgMinistryNotFound, msgMinistryNotFound)
	}

	s.logger.Info("ministry created", zap.Int64("id", ministry.ID))
	return s.Get(ctx, ministry.ID)
}

func (s *ministryService) Update(ctx context.Context, id int64, in models.MinistryInput) (*models.Ministry, error) {
	in = s.prepare(in)

	dropped, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.images.remove(in.Image)
		return nil, mapRepoError(err, msgMinistryNotFound, msgMinistryNotFound)
	}
	s.images.remove(dropped)

	return s.Get(ctx, id)
}

func (s *ministryService) Delete(ctx context.Context, id int64) error {
	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, msgMinistryNotFound, msgMinistryNotFound)
	}
	s.images.remove(image)

	s.logger.Info("ministry deleted", zap.Int64("id", id))
	return nil
}

func (s *ministryService) prepare(in models.MinistryInput) models.MinistryInput {
	if in.Description != nil {
		clean := s.sanitizer.Sanitize(*in.Description)
		in.Description = &clean
	}
	in.Description = optional(in.Description)
	in.Leader = optional(in.Leader)
	in.MeetingTime = optional(in.MeetingTime)
	in.ContactEmail = optional(in.ContactEmail)
	return in
}
