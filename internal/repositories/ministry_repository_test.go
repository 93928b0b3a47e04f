package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/churchsite/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var ministryRowColumns = []string{"id", "name", "description", "leader", "meeting_time", "contact_email", "image", "display_order", "created_at", "updated_at"}

func TestMinistryRepository_List(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	db, mock := setupTestDB(t)
	repo := NewMinistryRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM ministries`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(2)))
	mock.ExpectQuery(`FROM ministries ORDER BY display_order ASC, name ASC, id ASC LIMIT \? OFFSET \?`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(ministryRowColumns).
			AddRow(int64(1), "Worship", nil, "Grace Lee", "Sundays 8am", nil, nil, int64(1), now, now).
			AddRow(int64(2), "Youth", "<p>Grades 6-12</p>", nil, nil, "youth@church.test", "/uploads/ministries/m.webp", int64(2), now, now))

	ministries, total, err := repo.List(context.Background(), models.ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, ministries, 2)
	assert.Equal(t, "Worship", ministries[0].Name)
	assert.Equal(t, 1, ministries[0].DisplayOrder)
	assert.Nil(t, ministries[0].Image)
	require.NotNil(t, ministries[1].ContactEmail)
	assert.Equal(t, "youth@church.test", *ministries[1].ContactEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMinistryRepository_Update(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMinistryRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT image FROM ministries WHERE id = \? FOR UPDATE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow("/uploads/ministries/old.webp"))
	mock.ExpectExec(`UPDATE ministries`).
		WithArgs("Choir", nil, nil, nil, nil, "/uploads/ministries/new.webp", 4, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dropped, err := repo.Update(context.Background(), 3, models.MinistryInput{
		Name:         "Choir",
		Image:        strPtr("/uploads/ministries/new.webp"),
		DisplayOrder: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, strPtr("/uploads/ministries/old.webp"), dropped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMinistryRepository_Delete(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedImage *string
		expectedErr   error
	}{
		{
			name: "deleted with image",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT image FROM ministries WHERE id = \? FOR UPDATE`).
					WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows([]string{"image"}).AddRow("/uploads/ministries/x.webp"))
				mock.ExpectExec(`DELETE FROM ministries WHERE id = \?`).
					WithArgs(int64(5)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			expectedImage: strPtr("/uploads/ministries/x.webp"),
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT image FROM ministries WHERE id = \? FOR UPDATE`).
					WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows([]string{"image"}))
				mock.ExpectRollback()
			},
			expectedErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewMinistryRepository(db, zap.NewNop())
			tt.setupMock(mock)

			image, err := repo.Delete(context.Background(), 5)
			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedImage, image)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
