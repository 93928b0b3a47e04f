package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const sermonColumns = `id, title, preacher, scripture, sermon_date, video_url, audio_url, summary, thumbnail, created_at, updated_at`

type sermonRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSermonRepository creates a new sermon repository
func NewSermonRepository(db *database.DB, logger *zap.Logger) *sermonRepository {
	return &sermonRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves one page of sermons, most recent first, and the total count
func (r *sermonRepository) List(ctx context.Context, params models.ListParams) ([]models.Sermon, int64, error) {
	count, err := r.db.Query(ctx, "SELECT COUNT(*) AS total FROM sermons")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count sermons: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM sermons ORDER BY sermon_date DESC, id DESC LIMIT ? OFFSET ?`, sermonColumns)
	result, err := r.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sermons: %w", err)
	}

	sermons := make([]models.Sermon, 0, result.RowCount)
	for _, row := range result.Rows {
		sermons = append(sermons, rowToSermon(row))
	}

	return sermons, count.First().Int64("total"), nil
}

// GetByID retrieves a sermon by ID
func (r *sermonRepository) GetByID(ctx context.Context, id int64) (*models.Sermon, error) {
	query := fmt.Sprintf(`SELECT %s FROM sermons WHERE id = ? LIMIT 1`, sermonColumns)

	result, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sermon: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("sermon %w", ErrNotFound)
	}

	sermon := rowToSermon(row)
	return &sermon, nil
}

// Create inserts a new sermon and sets its ID
func (r *sermonRepository) Create(ctx context.Context, sermon *models.Sermon) error {
	query := `
		INSERT INTO sermons (title, preacher, scripture, sermon_date, video_url, audio_url, summary, thumbnail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Execute(ctx, query,
		sermon.Title,
		sermon.Preacher,
		sermon.Scripture,
		sermon.SermonDate,
		sermon.VideoURL,
		sermon.AudioURL,
		sermon.Summary,
		sermon.Thumbnail,
	)
	if err != nil {
		return fmt.Errorf("failed to create sermon: %w", err)
	}

	sermon.ID = res.LastInsertID
	return nil
}

// Update replaces the fields of a sermon and returns the thumbnail URL the update dropped
func (r *sermonRepository) Update(ctx context.Context, id int64, in models.SermonInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT thumbnail FROM sermons WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock sermon: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("sermon %w", ErrNotFound)
		}

		previous := row.StringPtr("thumbnail")
		next := imageChange(previous, in.Thumbnail, in.RemoveImage)

		query := `
			UPDATE sermons
			SET title = ?, preacher = ?, scripture = ?, sermon_date = ?, video_url = ?, audio_url = ?, summary = ?, thumbnail = ?
			WHERE id = ?
		`
		if _, err := conn.Execute(ctx, query,
			in.Title,
			in.Preacher,
			in.Scripture,
			in.SermonDate,
			in.VideoURL,
			in.AudioURL,
			in.Summary,
			next,
			id,
		); err != nil {
			return fmt.Errorf("failed to update sermon: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

// Delete removes a sermon and returns its thumbnail URL, if it had one
func (r *sermonRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var thumbnail *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT thumbnail FROM sermons WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock sermon: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("sermon %w", ErrNotFound)
		}
		thumbnail = row.StringPtr("thumbnail")

		if _, err := conn.Execute(ctx, "DELETE FROM sermons WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete sermon: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return thumbnail, nil
}

func rowToSermon(row database.Row) models.Sermon {
	date, _ := row.Time("sermon_date")
	created, updated := createdTimes(row)
	return models.Sermon{
		ID:         row.Int64("id"),
		Title:      row.String("title"),
		Preacher:   row.String("preacher"),
		Scripture:  row.StringPtr("scripture"),
		SermonDate: date,
		VideoURL:   row.StringPtr("video_url"),
		AudioURL:   row.StringPtr("audio_url"),
		Summary:    row.StringPtr("summary"),
		Thumbnail:  row.StringPtr("thumbnail"),
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}
