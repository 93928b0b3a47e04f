// Package services holds the business rules of the content resources: visibility of drafts,
// slug derivation, sanitizing and the lifecycle of stored images.
package services

import (
	"errors"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/repositories"
	"github.com/churchsite/backend/internal/upload"
	"go.uber.org/zap"
)

// ImageStore locates and removes stored files by their public URL
type ImageStore interface {
	Resolve(rawURL string) (upload.Location, error)
	Delete(path string) (bool, error)
}

// Sanitizer cleans HTML bodies before they are stored
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// mapRepoError converts repository sentinels into client errors.
// Anything else is a persistence failure.
func mapRepoError(err error, notFound, duplicate string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound(notFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.Conflict(duplicate)
	default:
		return apperrors.Persistence(err)
	}
}

// imageCleaner deletes files that are no longer referenced.
// Failures are logged and never fail the request.
type imageCleaner struct {
	store  ImageStore
	logger *zap.Logger
}

func (c imageCleaner) remove(url *string) {
	if url == nil || *url == "" || c.store == nil {
		return
	}

	loc, err := c.store.Resolve(*url)
	if err != nil {
		c.logger.Warn("stored image url is not removable", zap.String("url", *url), zap.Error(err))
		return
	}

	removed, err := c.store.Delete(loc.Path)
	if err != nil {
		c.logger.Error("failed to delete image", zap.String("path", loc.Path), zap.Error(err))
		return
	}
	if removed {
		c.logger.Info("image deleted", zap.String("url", *url))
	}
}

func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
