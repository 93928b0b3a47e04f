package repositories

import (
	"context"
	"fmt"

	"github.com/churchsite/backend/internal/database"
	"github.com/churchsite/backend/internal/models"
	"go.uber.org/zap"
)

const blogColumns = `id, title, slug, content, excerpt, author, published, published_at, featured_image, created_at, updated_at`

type blogRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBlogRepository creates a new blog repository
func NewBlogRepository(db *database.DB, logger *zap.Logger) *blogRepository {
	return &blogRepository{
		db:     db,
		logger: logger,
	}
}

// Method List retrieves one page of blog posts, newest first, and the total count.
// Drafts are only included when params.IncludeDrafts is set.
func (r *blogRepository) List(ctx context.Context, params models.ListParams) ([]models.Blog, int64, error) {
	where := "WHERE published = 1"
	if params.IncludeDrafts {
		where = ""
	}

	count, err := r.db.Query(ctx, "SELECT COUNT(*) AS total FROM blogs "+where)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count blogs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		%s
		ORDER BY COALESCE(published_at, created_at) DESC, id DESC
		LIMIT ? OFFSET ?
	`, blogColumns, where)

	result, err := r.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query blogs: %w", err)
	}

	blogs := make([]models.Blog, 0, result.RowCount)
	for _, row := range result.Rows {
		blogs = append(blogs, rowToBlog(row))
	}

	return blogs, count.First().Int64("total"), nil
}

// GetByID retrieves a blog post by ID
func (r *blogRepository) GetByID(ctx context.Context, id int64) (*models.Blog, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetBySlug retrieves a blog post by slug
func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return r.getOne(ctx, "slug = ?", slug)
}

func (r *blogRepository) getOne(ctx context.Context, condition string, arg any) (*models.Blog, error) {
	query := fmt.Sprintf(`SELECT %s FROM blogs WHERE %s LIMIT 1`, blogColumns, condition)

	result, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	row := result.First()
	if row == nil {
		return nil, fmt.Errorf("blog %w", ErrNotFound)
	}

	blog := rowToBlog(row)
	return &blog, nil
}

// Create inserts a new blog post and sets its ID
func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	query := `
		INSERT INTO blogs (title, slug, content, excerpt, author, published, published_at, featured_image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.Execute(ctx, query,
		blog.Title,
		blog.Slug,
		blog.Content,
		blog.Excerpt,
		blog.Author,
		blog.Published,
		blog.PublishedAt,
		blog.FeaturedImage,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("slug %q %w", blog.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to create blog: %w", err)
	}

	blog.ID = res.LastInsertID
	return nil
}

// Method Update replaces the fields of a blog post inside a transaction.
//
// It returns the public URL of the image the update dropped, which the caller deletes from storage.
func (r *blogRepository) Update(ctx context.Context, id int64, in models.BlogInput) (*string, error) {
	var dropped *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT featured_image FROM blogs WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock blog: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("blog %w", ErrNotFound)
		}

		previous := row.StringPtr("featured_image")
		next := imageChange(previous, in.FeaturedImage, in.RemoveImage)

		query := `
			UPDATE blogs
			SET title = ?, slug = ?, content = ?, excerpt = ?, author = ?, published = ?, published_at = ?, featured_image = ?
			WHERE id = ?
		`
		if _, err := conn.Execute(ctx, query,
			in.Title,
			in.Slug,
			in.Content,
			in.Excerpt,
			in.Author,
			in.Published,
			in.PublishedAt,
			next,
			id,
		); err != nil {
			if database.IsDuplicateKey(err) {
				return fmt.Errorf("slug %q %w", in.Slug, ErrDuplicate)
			}
			return fmt.Errorf("failed to update blog: %w", err)
		}

		dropped = replacedImage(previous, next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dropped, nil
}

// Method Delete removes a blog post inside a transaction.
//
// It returns the public URL of the post's image, if it had one.
func (r *blogRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var image *string

	err := database.WithTx(ctx, r.db, func(conn *database.Conn) error {
		current, err := conn.Query(ctx, "SELECT featured_image FROM blogs WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return fmt.Errorf("failed to lock blog: %w", err)
		}
		row := current.First()
		if row == nil {
			return fmt.Errorf("blog %w", ErrNotFound)
		}
		image = row.StringPtr("featured_image")

		if _, err := conn.Execute(ctx, "DELETE FROM blogs WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete blog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return image, nil
}

func rowToBlog(row database.Row) models.Blog {
	created, updated := createdTimes(row)
	return models.Blog{
		ID:            row.Int64("id"),
		Title:         row.String("title"),
		Slug:          row.String("slug"),
		Content:       row.String("content"),
		Excerpt:       row.StringPtr("excerpt"),
		Author:        row.StringPtr("author"),
		Published:     row.Bool("published"),
		PublishedAt:   row.TimePtr("published_at"),
		FeaturedImage: row.StringPtr("featured_image"),
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}
