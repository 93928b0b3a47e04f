package services

import (
	"context"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

// SermonRepository is the interface that wraps methods for sermons table data access
type SermonRepository interface {
	List(ctx context.Context, params models.ListParams) ([]models.Sermon, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Sermon, error)
	Create(ctx context.Context, sermon *models.Sermon) error
	Update(ctx context.Context, id int64, in models.SermonInput) (*string, error)
	Delete(ctx context.Context, id int64) (*string, error)
}

const msgSermonNotFound = "sermon not found"

type sermonService struct {
	repo      SermonRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
}

// NewSermonService creates a new sermon service
func NewSermonService(repo SermonRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *sermonService {
	return &sermonService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
	}
}

func (s *sermonService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Sermon], error) {
	sermons, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list sermons", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	return &models.Page[models.Sermon]{Items: sermons, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

func (s *sermonService) Get(ctx context.Context, id int64) (*models.Sermon, error) {
	sermon, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, msgSermonNotFound, msgSermonNotFound)
	}
	return sermon, nil
}

func (s *sermonService) Create(ctx context.Context, in models.SermonInput) (*models.Sermon, error) {
	in = s.prepare(in)

	sermon := &models.Sermon{
		Title:      in.Title,
		Preacher:   in.Preacher,
		Scripture:  in.Scripture,
		SermonDate: in.SermonDate,
		VideoURL:   in.VideoURL,
		AudioURL:   in.AudioURL,
		Summary:    in.Summary,
		Thumbnail:  in.Thumbnail,
	}
	if err := s.repo.Create(ctx, sermon); err != nil {
		s.images.remove(in.Thumbnail)
		return nil, mapRepoError(err, msgSermonNotFound, msgSermonNotFound)
	}

	s.logger.Info("sermon created", zap.Int64("id", sermon.ID))
	return s.Get(ctx, sermon.ID)
}

func (s *sermonService) Update(ctx context.Context, id int64, in models.SermonInput) (*models.Sermon, error) {
	in = s.prepare(in)

	dropped, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.images.remove(in.Thumbnail)
		return nil, mapRepoError(err, msgSermonNotFound, msgSermonNotFound)
	}
	s.images.remove(dropped)

	return s.Get(ctx, id)
}

func (s *sermonService) Delete(ctx context.Context, id int64) error {
	thumbnail, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, msgSermonNotFound, msgSermonNotFound)
	}
	s.images.remove(thumbnail)

	s.logger.Info("sermon deleted", zap.Int64("id", id))
	return nil
}

func (s *sermonService) prepare(in models.SermonInput) models.SermonInput {
	if in.Summary != nil {
		clean := s.sanitizer.Sanitize(*in.Summary)
		in.Summary = &clean
	}
	in.Summary = optional(in.Summary)
	in.Scripture = optional(in.Scripture)
	in.VideoURL = optional(in.VideoURL)
	in.AudioURL = optional(in.AudioURL)
	return in
}
