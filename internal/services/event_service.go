package services

import (
	"context"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

// EventRepository is the interface that wraps methods for events table data access
type EventRepository interface {
	// Method List retrieves one page of events and the total count.
	//
	// params.Upcoming restricts the result to events that have not finished yet.
	List(ctx context.Context, params models.ListParams) ([]models.Event, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id int64, in models.EventInput) (*string, error)
	Delete(ctx context.Context, id int64) (*string, error)
}

const msgEventNotFound = "event not found"

type eventService struct {
	repo      EventRepository
	sanitizer Sanitizer
	images    imageCleaner
	logger    *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(repo EventRepository, sanitizer Sanitizer, store ImageStore, logger *zap.Logger) *eventService {
	return &eventService{
		repo:      repo,
		sanitizer: sanitizer,
		images:    imageCleaner{store: store, logger: logger},
		logger:    logger,
	}
}

func (s *eventService) List(ctx context.Context, params models.ListParams) (*models.Page[models.Event], error) {
	events, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list events", zap.Error(err))
		return nil, apperrors.Persistence(err)
	}

	return &models.Page[models.Event]{Items: events, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, msgEventNotFound, msgEventNotFound)
	}
	return event, nil
}

// Create stores a new event, deleting the uploaded image again if the insert fails
func (s *eventService) Create(ctx context.Context, in models.EventInput) (*models.Event, error) {
	in = s.prepare(in)

	event := &models.Event{
		Title:           in.Title,
		Description:     in.Description,
		Location:        in.Location,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		RegistrationURL: in.RegistrationURL,
		Image:           in.Image,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.images.remove(in.Image)
		return nil, mapRepoError(err, msgEventNotFound, msgEventNotFound)
	}

	s.logger.Info("event created", zap.Int64("id", event.ID))
	return s.Get(ctx, event.ID)
}

// Update replaces an event and deletes the image it dropped
func (s *eventService) Update(ctx context.Context, id int64, in models.EventInput) (*models.Event, error) {
	in = s.prepare(in)

	dropped, err := s.repo.Update(ctx, id, in)
	if err != nil {
		s.images.remove(in.Image)
		return nil, mapRepoError(err, msgEventNotFound, msgEventNotFound)
	}
	s.images.remove(dropped)

	return s.Get(ctx, id)
}

// Delete removes an event and its image
func (s *eventService) Delete(ctx context.Context, id int64) error {
	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoError(err, msgEventNotFound, msgEventNotFound)
	}
	s.images.remove(image)

	s.logger.Info("event deleted", zap.Int64("id", id))
	return nil
}

func (s *eventService) prepare(in models.EventInput) models.EventInput {
	if in.Description != nil {
		clean := s.sanitizer.Sanitize(*in.Description)
		in.Description = &clean
	}
	in.Description = optional(in.Description)
	in.Location = optional(in.Location)
	in.RegistrationURL = optional(in.RegistrationURL)
	return in
}
