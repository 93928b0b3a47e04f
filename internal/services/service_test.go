package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/churchsite/backend/internal/apperrors"
	"github.com/churchsite/backend/internal/auth"
	"github.com/churchsite/backend/internal/models"
	"github.com/churchsite/backend/internal/repositories"
	"github.com/churchsite/backend/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBlogRepository is a mock implementation of BlogRepository
type mockBlogRepository struct {
	blogs       []models.Blog
	blog        *models.Blog
	total       int64
	err         error
	createErr   error
	dropped     *string
	lastParams  models.ListParams
	created     *models.Blog
	updateInput *models.BlogInput
	bySlug      string
}

func (m *mockBlogRepository) List(ctx context.Context, params models.ListParams) ([]models.Blog, int64, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.blogs, m.total, nil
}

func (m *mockBlogRepository) GetByID(ctx context.Context, id int64) (*models.Blog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.blog, nil
}

func (m *mockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	m.bySlug = slug
	if m.err != nil {
		return nil, m.err
	}
	return m.blog, nil
}

func (m *mockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if m.createErr != nil {
		return m.createErr
	}
	blog.ID = 10
	m.created = blog
	return nil
}

func (m *mockBlogRepository) Update(ctx context.Context, id int64, in models.BlogInput) (*string, error) {
	m.updateInput = &in
	if m.err != nil {
		return nil, m.err
	}
	return m.dropped, nil
}

func (m *mockBlogRepository) Delete(ctx context.Context, id int64) (*string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.dropped, nil
}

// mockImageStore records deleted paths
type mockImageStore struct {
	deleted   []string
	deleteErr error
	missing   bool
}

func (m *mockImageStore) Resolve(rawURL string) (upload.Location, error) {
	folder, filename, err := upload.ParseURL(rawURL)
	if err != nil {
		return upload.Location{}, err
	}
	return upload.Location{Folder: folder, Filename: filename, Path: path.Join("/srv/uploads", folder, filename)}, nil
}

func (m *mockImageStore) Delete(p string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if m.missing {
		return false, nil
	}
	m.deleted = append(m.deleted, p)
	return true, nil
}

// stripSanitizer removes script tags
type stripSanitizer struct{}

func (stripSanitizer) Sanitize(rawHTML string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(rawHTML, "<script>", ""), "</script>", ""))
}

func strPtr(s string) *string { return &s }

func staffContext() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: 1, Role: auth.RolePastor})
}

func assertKind(t *testing.T, err error, kind apperrors.Kind, status int) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected *apperrors.Error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, status, appErr.Status)
}

func TestNewBlogService(t *testing.T) {
	logger := zap.NewNop()
	repo := &mockBlogRepository{}
	store := &mockImageStore{}

	svc := NewBlogService(repo, stripSanitizer{}, store, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, repo, svc.repo)
	assert.Equal(t, logger, svc.logger)
	assert.Equal(t, store, svc.images.store)
}

func TestBlogService_List(t *testing.T) {
	tests := []struct {
		name           string
		ctx            context.Context
		repo           *mockBlogRepository
		expectedError  bool
		expectedDrafts bool
	}{
		{
			name: "guest sees published only",
			ctx:  context.Background(),
			repo: &mockBlogRepository{blogs: []models.Blog{{ID: 1}}, total: 1},
		},
		{
			name:           "staff sees drafts",
			ctx:            staffContext(),
			repo:           &mockBlogRepository{blogs: []models.Blog{{ID: 1}, {ID: 2}}, total: 2},
			expectedDrafts: true,
		},
		{
			name: "member sees published only",
			ctx:  auth.WithIdentity(context.Background(), auth.Identity{UserID: 3, Role: auth.RoleMember}),
			repo: &mockBlogRepository{},
		},
		{
			name:          "repository error",
			ctx:           context.Background(),
			repo:          &mockBlogRepository{err: errors.New("connection refused")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBlogService(tt.repo, stripSanitizer{}, &mockImageStore{}, zap.NewNop())

			page, err := svc.List(tt.ctx, models.ListParams{Page: 1, Limit: 10, IncludeDrafts: true})

			assert.Equal(t, tt.expectedDrafts, tt.repo.lastParams.IncludeDrafts)
			if tt.expectedError {
				assertKind(t, err, apperrors.KindPersistence, 500)
				assert.Nil(t, page)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.repo.total, page.Total)
			assert.Len(t, page.Items, len(tt.repo.blogs))
			assert.Equal(t, 1, page.Page)
			assert.Equal(t, 10, page.Limit)
		})
	}
}

func TestBlogService_Get(t *testing.T) {
	published := &models.Blog{ID: 5, Slug: "hello", Published: true}
	draft := &models.Blog{ID: 6, Slug: "draft"}

	t.Run("by slug", func(t *testing.T) {
		repo := &mockBlogRepository{blog: published}
		svc := NewBlogService(repo, stripSanitizer{}, nil, zap.NewNop())

		blog, err := svc.Get(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, int64(5), blog.ID)
		assert.Equal(t, "hello", repo.bySlug)
	})

	t.Run("by id", func(t *testing.T) {
		repo := &mockBlogRepository{blog: published}
		svc := NewBlogService(repo, stripSanitizer{}, nil, zap.NewNop())

		_, err := svc.Get(context.Background(), "5")
		require.NoError(t, err)
		assert.Empty(t, repo.bySlug)
	})

	t.Run("draft hidden from guests", func(t *testing.T) {
		svc := NewBlogService(&mockBlogRepository{blog: draft}, stripSanitizer{}, nil, zap.NewNop())

		_, err := svc.Get(context.Background(), "draft")
		assertKind(t, err, apperrors.KindNotFound, 404)
	})

	t.Run("draft visible to staff", func(t *testing.T) {
		svc := NewBlogService(&mockBlogRepository{blog: draft}, stripSanitizer{}, nil, zap.NewNop())

		blog, err := svc.Get(staffContext(), "draft")
		require.NoError(t, err)
		assert.False(t, blog.Published)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockBlogRepository{err: fmt.Errorf("blog %w", repositories.ErrNotFound)}
		svc := NewBlogService(repo, stripSanitizer{}, nil, zap.NewNop())

		_, err := svc.Get(context.Background(), "missing")
		assertKind(t, err, apperrors.KindNotFound, 404)
	})
}

func TestBlogService_Create(t *testing.T) {
	t.Run("derives slug and publication time", func(t *testing.T) {
		repo := &mockBlogRepository{blog: &models.Blog{ID: 10}}
		svc := NewBlogService(repo, stripSanitizer{}, &mockImageStore{}, zap.NewNop())
		fixed := time.Date(2026, 4, 5, 8, 30, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		blog, err := svc.Create(context.Background(), models.BlogInput{
			Title:     "Easter Sunday Service!",
			Content:   "<p>Join us</p><script></script>",
			Excerpt:   strPtr(""),
			Published: true,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), blog.ID)

		require.NotNil(t, repo.created)
		assert.Equal(t, "easter-sunday-service", repo.created.Slug)
		assert.Equal(t, "<p>Join us</p>", repo.created.Content)
		assert.Nil(t, repo.created.Excerpt)
		require.NotNil(t, repo.created.PublishedAt)
		assert.Equal(t, fixed, *repo.created.PublishedAt)
	})

	t.Run("duplicate slug removes fresh upload", func(t *testing.T) {
		repo := &mockBlogRepository{createErr: fmt.Errorf("slug %w", repositories.ErrDuplicate)}
		store := &mockImageStore{}
		svc := NewBlogService(repo, stripSanitizer{}, store, zap.NewNop())

		_, err := svc.Create(context.Background(), models.BlogInput{
			Title:         "Hello",
			Slug:          "hello",
			Content:       "body",
			FeaturedImage: strPtr("/uploads/blog/blog-1-123456789.webp"),
		})
		assertKind(t, err, apperrors.KindConflict, 409)
		assert.Equal(t, []string{"/srv/uploads/blog/blog-1-123456789.webp"}, store.deleted)
	})

	t.Run("empty content after sanitizing", func(t *testing.T) {
		repo := &mockBlogRepository{}
		svc := NewBlogService(repo, stripSanitizer{}, &mockImageStore{}, zap.NewNop())

		_, err := svc.Create(context.Background(), models.BlogInput{Title: "Hello", Content: "<script></script>"})
		assertKind(t, err, apperrors.KindValidation, 400)
		assert.Nil(t, repo.created)
	})

	t.Run("title without slug characters", func(t *testing.T) {
		svc := NewBlogService(&mockBlogRepository{}, stripSanitizer{}, &mockImageStore{}, zap.NewNop())

		_, err := svc.Create(context.Background(), models.BlogInput{Title: "!!!", Content: "x"})
		assertKind(t, err, apperrors.KindValidation, 400)
	})
}

func TestBlogService_Update(t *testing.T) {
	t.Run("deletes dropped image", func(t *testing.T) {
		repo := &mockBlogRepository{blog: &models.Blog{ID: 3}, dropped: strPtr("/uploads/blog/old.webp")}
		store := &mockImageStore{}
		svc := NewBlogService(repo, stripSanitizer{}, store, zap.NewNop())

		_, err := svc.Update(context.Background(), 3, models.BlogInput{Title: "T", Slug: "t", Content: "c", FeaturedImage: strPtr("/uploads/blog/new.webp")})
		require.NoError(t, err)
		assert.Equal(t, []string{"/srv/uploads/blog/old.webp"}, store.deleted)
	})

	t.Run("missing post removes fresh upload", func(t *testing.T) {
		repo := &mockBlogRepository{err: fmt.Errorf("blog %w", repositories.ErrNotFound)}
		store := &mockImageStore{}
		svc := NewBlogService(repo, stripSanitizer{}, store, zap.NewNop())

		_, err := svc.Update(context.Background(), 3, models.BlogInput{Title: "T", Slug: "t", Content: "c", FeaturedImage: strPtr("/uploads/blog/new.webp")})
		assertKind(t, err, apperrors.KindNotFound, 404)
		assert.Equal(t, []string{"/srv/uploads/blog/new.webp"}, store.deleted)
	})
}

func TestBlogService_Delete(t *testing.T) {
	tests := []struct {
		name          string
		repo          *mockBlogRepository
		store         *mockImageStore
		expectedKind  apperrors.Kind
		expectedFiles int
	}{
		{
			name:          "deletes image",
			repo:          &mockBlogRepository{dropped: strPtr("/uploads/blog/a.webp")},
			store:         &mockImageStore{},
			expectedFiles: 1,
		},
		{
			name:  "file deletion failure is not fatal",
			repo:  &mockBlogRepository{dropped: strPtr("/uploads/blog/a.webp")},
			store: &mockImageStore{deleteErr: errors.New("permission denied")},
		},
		{
			name:  "unparseable image url is ignored",
			repo:  &mockBlogRepository{dropped: strPtr("https://cdn.example/a.webp")},
			store: &mockImageStore{},
		},
		{
			name:         "persistence failure",
			repo:         &mockBlogRepository{err: errors.New("deadlock")},
			store:        &mockImageStore{},
			expectedKind: apperrors.KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewBlogService(tt.repo, stripSanitizer{}, tt.store, zap.NewNop())

			err := svc.Delete(context.Background(), 1)

			if tt.expectedKind != "" {
				assert.True(t, apperrors.IsKind(err, tt.expectedKind))
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, tt.store.deleted, tt.expectedFiles)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Easter -- Sunday  ", "easter-sunday"},
		{"Café & Crêpes", "cafe-crepes"},
		{"2026 Retreat: Day 1", "2026-retreat-day-1"},
		{"???", ""},
		{"2026", "post-2026"},
		{strings.Repeat("a", 250), strings.Repeat("a", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}
