package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const pageColumns = `page_key, title, content, image, updated_at`

type pageRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPageRepository creates a new content page repository
func NewPageRepository(db *database.DB, logger *zap.Logger) *pageRepository {
	return &pageRepository{
		db:     db,
		logger: logger,
	}
}

// GetByKey retrieves a content page by key
func (r *pageRepository) GetByKey(ctx context.Context, key string) (*models.PageContent, error) {
	query := fmt.Sprintf(`SELECT %s FROM pages WHERE page_key = ? LIMIT 1`, pageColumns)

	result, err := r.db.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("page %w", ErrNotFound)
	}

	page := rowToPage(row)
	return &page, nil
}

// Upsert writes the page under key, creating it on first use, and returns the image URL
// the write dropped
func (r *pageRepository) Upsert(ctx context.Context, key string, in models.PageContentInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT image FROM pages WHERE page_key = ? FOR UPDATE", key)
		if err != nil {
			return fmt.Errorf("failed to lock page: %w", err)
		}

		row := current.First()
		if row == nil {
			if _, err := conn.Execute(ctx,
				"INSERT INTO pages (page_key, title, content, image) VALUES (?, ?, ?, ?)",
				key, in.Title, in.Content, in.Image,
			); err != nil {
				return fmt.Errorf("failed to create page: %w", err)
			}
			return nil
		}

		previous := row.StringPtr("image")
		next := imageChange(previous, in.Image, in.RemoveImage)
		if _, err := conn.Execute(ctx,
			"UPDATE pages SET title = ?, content = ?, image = ? WHERE page_key = ?",
			in.Title, in.Content, next, key,
		); err != nil {
			return fmt.Errorf("failed to update page: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

func rowToPage(row database.Row) models.PageContent {
	updated, _ := row.Time("updated_at")
	return models.PageContent{
		Key:       row.String("page_key"),
		Title:     row.String("title"),
		Content:   row.String("content"),
		Image:     row.StringPtr("image"),
		UpdatedAt: updated,
	}
}
