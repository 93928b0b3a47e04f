package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const ministryColumns = `id, name, description, leader, meeting_time, contact_email, image, display_order, created_at, updated_at`

type ministryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewMinistryRepository creates a new ministry repository
func NewMinistryRepository(db *database.DB, logger *zap.Logger) *ministryRepository {
	return &ministryRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves one page of ministries in display order and the total count
func (r *ministryRepository) List(ctx context.Context, params models.ListParams) ([]models.Ministry, int64, error) {
	count, err := r.db.Query(ctx, "SELECT COUNT(*) AS total FROM ministries")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ministries: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM ministries ORDER BY display_order ASC, name ASC, id ASC LIMIT ? OFFSET ?`, ministryColumns)
	result, err := r.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ministries: %w", err)
	}

	ministries := make([]models.Ministry, 0, result.RowCount)
	for _, row := range result.Rows {
		ministries = append(ministries, rowToMinistry(row))
	}

	return ministries, count.First().Int64("total"), nil
}

// GetByID retrieves a ministry by ID
func (r *ministryRepository) GetByID(ctx context.Context, id int64) (*models.Ministry, error) {
	query := fmt.Sprintf(`SELECT %s FROM ministries WHERE id = ? LIMIT 1`, ministryColumns)

	result, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ministry: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("ministry %w", ErrNotFound)
	}

	ministry := rowToMinistry(row)
	return &ministry, nil
}

// Create inserts a new ministry and sets its ID
func (r *ministryRepository) Create(ctx context.Context, ministry *models.Ministry) error {
	query := `
		INSERT INTO ministries (name, description, leader, meeting_time, contact_email, image, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Execute(ctx, query,
		ministry.Name,
		ministry.Description,
		ministry.Leader,
		ministry.MeetingTime,
		ministry.ContactEmail,
		ministry.Image,
		ministry.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create ministry: %w", err)
	}

	ministry.ID = res.LastInsertID
	return nil
}

// Update replaces the fields of a ministry and returns the image URL the update dropped
func (r *ministryRepository) Update(ctx context.Context, id int64, in models.MinistryInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		previous, err := lockImage(ctx, conn, "SELECT image FROM ministries WHERE id = ? FOR UPDATE", id, "image", "ministry")
		if err != nil {
			return err
		}
		next := imageChange(previous, in.Image, in.RemoveImage)

		query := `
			UPDATE ministries
			SET name = ?, description = ?, leader = ?, meeting_time = ?, contact_email = ?, image = ?, display_order = ?
			WHERE id = ?
		`
		if _, err := conn.Execute(ctx, query,
			in.Name,
			in.Description,
			in.Leader,
			in.MeetingTime,
			in.ContactEmail,
			next,
			in.DisplayOrder,
			id,
		); err != nil {
			return fmt.Errorf("failed to update ministry: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

// Delete removes a ministry and returns its image URL, if it had one
func (r *ministryRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var image *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := lockImage(ctx, conn, "SELECT image FROM ministries WHERE id = ? FOR UPDATE", id, "image", "ministry")
		if err != nil {
			return err
		}
		image = current

		if _, err := conn.Execute(ctx, "DELETE FROM ministries WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete ministry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

func rowToMinistry(row database.Row) models.Ministry {
	created, updated := createdTimes(row)
	return models.Ministry{
		ID:           row.Int64("id"),
		Name:         row.String("name"),
		Description:  row.StringPtr("description"),
		Leader:       row.StringPtr("leader"),
		MeetingTime:  row.StringPtr("meeting_time"),
		ContactEmail: row.StringPtr("contact_email"),
		Image:        row.StringPtr("image"),
		DisplayOrder: int(row.Int64("display_order")),
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}
