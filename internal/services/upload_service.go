package services

import (
	"context"
	"errors"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/upload"
	"go.uber.org/zap"
)

type uploadService struct {
	store  ImageStore
	logger *zap.Logger
}

// NewUploadService creates the service behind the standalone upload endpoints
func NewUploadService(store ImageStore, logger *zap.Logger) *uploadService {
	return &uploadService{store: store, logger: logger}
}

// Remove deletes the stored file behind a public URL
func (s *uploadService) Remove(ctx context.Context, rawURL string) error {
	loc, err := s.store.Resolve(rawURL)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidURL) || errors.Is(err, upload.ErrOutsideRoot) || errors.Is(err, upload.ErrInvalidFolder) {
			return apperrors.BadRequest("invalid upload url")
		}
		return apperrors.Internal(err)
	}

	removed, err := s.store.Delete(loc.Path)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !removed {
		return apperrors.NotFound("file not found")
	}

	s.logger.Info("upload deleted", zap.String("folder", loc.Folder), zap.String("filename", loc.Filename))
	return nil
}
