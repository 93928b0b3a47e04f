// Package repositories maps content records to SQL statements issued through the persistence facade.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/churchsite/backend/internal/database"
)

// Sentinel errors wrapped by every repository
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// imageChange decides the stored image of an update: a new upload wins,
// then an explicit removal, otherwise the current value is kept
func imageChange(current, uploaded *string, remove bool) *string {
	if uploaded != nil {
		return uploaded
	}
	if remove {
		return nil
	}
	return current
}

// replacedImage returns the previous image when an update dropped it
func replacedImage(previous, next *string) *string {
	if previous == nil {
		return nil
	}
	if next != nil && *next == *previous {
		return nil
	}
	return previous
}

// lockImage runs a SELECT ... FOR UPDATE of one image column and returns its value.
// A missing row yields "<entity> not found".
func lockImage(ctx context.Context, conn *database.Conn, query string, id int64, column, entity string) (*string, error) {
	current, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", entity, err)
	}
	row := current.First()
	if row == nil {
		return nil, fmt.Errorf("%s %w", entity, ErrNotFound)
	}
	return row.StringPtr(column), nil
}

func createdTimes(row database.Row) (time.Time, time.Time) {
	created, _ := row.Time("created_at")
	updated, _ := row.Time("updated_at")
	return created, updated
}
