package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const pastorColumns = `id, name, title, bio, email, photo, display_order, created_at, updated_at`

type pastorRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPastorRepository creates a new pastor repository
func NewPastorRepository(db *database.DB, logger *zap.Logger) *pastorRepository {
	return &pastorRepository{
		db:     db,
		logger: logger,
	}
}

// List retrieves one page of pastors in display order and the total count
func (r *pastorRepository) List(ctx context.Context, params models.ListParams) ([]models.Pastor, int64, error) {
	count, err := r.db.Query(ctx, "SELECT COUNT(*) AS total FROM pastors")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count pastors: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM pastors ORDER BY display_order ASC, name ASC, id ASC LIMIT ? OFFSET ?`, pastorColumns)
	result, err := r.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query pastors: %w", err)
	}

	pastors := make([]models.Pastor, 0, result.RowCount)
	for _, row := range result.Rows {
		pastors = append(pastors, rowToPastor(row))
	}

	return pastors, count.First().Int64("total"), nil
}

// GetByID retrieves a pastor by ID
func (r *pastorRepository) GetByID(ctx context.Context, id int64) (*models.Pastor, error) {
	query := fmt.Sprintf(`SELECT %s FROM pastors WHERE id = ? LIMIT 1`, pastorColumns)

	result, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pastor: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("pastor %w", ErrNotFound)
	}

	pastor := rowToPastor(row)
	return &pastor, nil
}

// Create inserts a new pastor and sets its ID
func (r *pastorRepository) Create(ctx context.Context, pastor *models.Pastor) error {
	query := `
		INSERT INTO pastors (name, title, bio, email, photo, display_order)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Execute(ctx, query,
		pastor.Name,
		pastor.Title,
		pastor.Bio,
		pastor.Email,
		pastor.Photo,
		pastor.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create pastor: %w", err)
	}

	pastor.ID = res.LastInsertID
	return nil
}

// Update replaces the fields of a pastor and returns the photo URL the update dropped
func (r *pastorRepository) Update(ctx context.Context, id int64, in models.PastorInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		previous, err := lockImage(ctx, conn, "SELECT photo FROM pastors WHERE id = ? FOR UPDATE", id, "photo", "pastor")
		if err != nil {
			return err
		}
		next := imageChange(previous, in.Photo, in.RemoveImage)

		query := `
			UPDATE pastors
			SET name = ?, title = ?, bio = ?, email = ?, photo = ?, display_order = ?
			WHERE id = ?
		`
		if _, err := conn.Execute(ctx, query,
			in.Name,
			in.Title,
			in.Bio,
			in.Email,
			next,
			in.DisplayOrder,
			id,
		); err != nil {
			return fmt.Errorf("failed to update pastor: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

// Delete removes a pastor and returns the photo URL, if there was one
func (r *pastorRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var photo *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := lockImage(ctx, conn, "SELECT photo FROM pastors WHERE id = ? FOR UPDATE", id, "photo", "pastor")
		if err != nil {
			return err
		}
		photo = current

		if _, err := conn.Execute(ctx, "DELETE FROM pastors WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete pastor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return photo, nil
}

func rowToPastor(row database.Row) models.Pastor {
	created, updated := createdTimes(row)
	return models.Pastor{
		ID:           row.Int64("id"),
		Name:         row.String("name"),
		Title:        row.StringPtr("title"),
		Bio:          row.StringPtr("bio"),
		Email:        row.StringPtr("email"),
		Photo:        row.StringPtr("photo"),
		DisplayOrder: int(row.Int64("display_order")),
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}
