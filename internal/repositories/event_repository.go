package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const eventColumns = `id, title, description, location, start_date, end_date, registration_url, image, created_at, updated_at`

type eventRepository struct {
	db     *database.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB, logger *zap.Logger) *eventRepository {
	return &eventRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Method List retrieves one page of events and the total count.
//
// With params.Upcoming only events that have not finished are listed, soonest first.
// Otherwise every event is listed, latest start first.
func (r *eventRepository) List(ctx context.Context, params models.ListParams) ([]models.Event, int64, error) {
	where, order := "", "ORDER BY start_date DESC, id DESC"
	var args []any
	if params.Upcoming {
		where = "WHERE COALESCE(end_date, start_date) >= ?"
		order = "ORDER BY start_date ASC, id ASC"
		args = append(args, r.now().UTC())
	}

	count, err := r.db.Query(ctx, "SELECT COUNT(*) AS total FROM events "+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events %s %s LIMIT ? OFFSET ?`, eventColumns, where, order)
	result, err := r.db.Query(ctx, query, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events: %w", err)
	}

	events := make([]models.Event, 0, result.RowCount)
	for _, row := range result.Rows {
		events = append(events, rowToEvent(row))
	}

	return events, count.First().Int64("total"), nil
}

// GetByID retrieves an event by ID
func (r *eventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = ? LIMIT 1`, eventColumns)

	result, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("event %w", ErrNotFound)
	}

	event := rowToEvent(row)
	return &event, nil
}

// Create inserts a new event and sets its ID
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_date, end_date, registration_url, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Execute(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.RegistrationURL,
		event.Image,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	event.ID = res.LastInsertID
	return nil
}

// Update replaces the fields of an event and returns the image URL the update dropped
func (r *eventRepository) Update(ctx context.Context, id int64, in models.EventInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT image FROM events WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("event %w", ErrNotFound)
		}

		previous := row.StringPtr("image")
		next := imageChange(previous, in.Image, in.RemoveImage)

		query := `
			UPDATE events
			SET title = ?, description = ?, location = ?, start_date = ?, end_date = ?, registration_url = ?, image = ?
			WHERE id = ?
		`
		if _, err := conn.Execute(ctx, query,
			in.Title,
			in.Description,
			in.Location,
			in.StartDate,
			in.EndDate,
			in.RegistrationURL,
			next,
			id,
		); err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

// Delete removes an event and returns its image URL, if it had one
func (r *eventRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var image *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT image FROM events WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock event: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("event %w", ErrNotFound)
		}
		image = row.StringPtr("image")

		if _, err := conn.Execute(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

func rowToEvent(row database.Row) models.Event {
	start, _ := row.Time("start_date")
	created, updated := createdTimes(row)
	return models.Event{
		ID:              row.Int64("id"),
		Title:           row.String("title"),
		Description:     row.StringPtr("description"),
		Location:        row.StringPtr("location"),
		StartDate:       start,
		EndDate:         row.TimePtr("end_date"),
		RegistrationURL: row.StringPtr("registration_url"),
		Image:           row.StringPtr("image"),
		CreatedAt:       created,
		UpdatedAt:       updated,
	}
}
