package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// setupTestDB creates a facade over a mock database
func setupTestDB(t *testing.T) (*DB, sqlmock.Sqlmock, *observer.ObservedLogs) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	core, logs := observer.New(zapcore.ErrorLevel)
	db, err := Open(sqlDB, zap.New(core))
	require.NoError(t, err)

	return db, mock, logs
}

func TestDB_Query(t *testing.T) {
	db, mock, _ := setupTestDB(t)
	published := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "title", "published", "published_at", "excerpt"}).
		AddRow(int64(1), []byte("Welcome"), int64(1), published, nil).
		AddRow(int64(2), "Advent", int64(0), nil, "soon")
	mock.ExpectQuery(`SELECT id, title, published, published_at, excerpt FROM blogs WHERE author = \?`).
		WithArgs("Pastor Ann").
		WillReturnRows(rows)

	result, err := db.Query(context.Background(), "SELECT id, title, published, published_at, excerpt FROM blogs WHERE author = ?", "Pastor Ann")
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowCount)
	require.Len(t, result.Rows, 2)

	first := result.First()
	assert.Equal(t, int64(1), first.Int64("id"))
	assert.Equal(t, "Welcome", first.String("title"))
	assert.True(t, first.Bool("published"))
	at, ok := first.Time("published_at")
	require.True(t, ok)
	assert.Equal(t, published, at)
	assert.Nil(t, first.StringPtr("excerpt"))

	second := result.Rows[1]
	assert.False(t, second.Bool("published"))
	assert.Nil(t, second.TimePtr("published_at"))
	require.NotNil(t, second.StringPtr("excerpt"))
	assert.Equal(t, "soon", *second.StringPtr("excerpt"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Query_EmptyResult(t *testing.T) {
	db, mock, _ := setupTestDB(t)
	mock.ExpectQuery(`SELECT id FROM events`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := db.Query(context.Background(), "SELECT id FROM events")
	require.NoError(t, err)

	assert.Equal(t, 0, result.RowCount)
	assert.NotNil(t, result.Rows)
	assert.Nil(t, result.First())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ErrorsAreLoggedAndReturnedUnchanged(t *testing.T) {
	engineErr := &gomysql.MySQLError{Number: 1146, Message: "Table 'church.missing' doesn't exist"}

	t.Run("query", func(t *testing.T) {
		db, mock, logs := setupTestDB(t)
		mock.ExpectQuery(`SELECT \* FROM missing`).WillReturnError(engineErr)

		_, err := db.Query(context.Background(), "SELECT * FROM missing")

		assert.Same(t, engineErr, err)
		assert.Equal(t, 1, logs.FilterMessage("query failed").Len())
	})

	t.Run("execute", func(t *testing.T) {
		db, mock, logs := setupTestDB(t)
		mock.ExpectExec(`DELETE FROM missing`).WillReturnError(engineErr)

		_, err := db.Execute(context.Background(), "DELETE FROM missing")

		assert.Same(t, engineErr, err)
		assert.Equal(t, 1, logs.FilterMessage("statement failed").Len())
	})
}

func TestDB_Execute(t *testing.T) {
	db, mock, _ := setupTestDB(t)
	mock.ExpectExec(`INSERT INTO sermons \(title\) VALUES \(\?\)`).
		WithArgs("Grace").
		WillReturnResult(sqlmock.NewResult(42, 1))

	result, err := db.Execute(context.Background(), "INSERT INTO sermons (title) VALUES (?)", "Grace")
	require.NoError(t, err)

	assert.Equal(t, &ExecResult{RowsAffected: 1, LastInsertID: 42}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConn_CommitAndRollback(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE blogs SET featured_image = NULL`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM blogs`).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(3)))
		mock.ExpectCommit()

		conn, err := db.GetConnection(context.Background())
		require.NoError(t, err)

		res, err := conn.Execute(context.Background(), "UPDATE blogs SET featured_image = NULL")
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.RowsAffected)

		count, err := conn.Query(context.Background(), "SELECT COUNT(*) AS total FROM blogs")
		require.NoError(t, err)
		assert.Equal(t, int64(3), count.First().Int64("total"))

		require.NoError(t, conn.Commit())
		assert.ErrorIs(t, conn.Rollback(), ErrTxDone)
		_, err = conn.Query(context.Background(), "SELECT 1")
		assert.ErrorIs(t, err, ErrTxDone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		conn, err := db.GetConnection(context.Background())
		require.NoError(t, err)
		require.NoError(t, conn.Rollback())
		assert.ErrorIs(t, conn.Commit(), ErrTxDone)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		db, mock, logs := setupTestDB(t)
		beginErr := errors.New("too many connections")
		mock.ExpectBegin().WillReturnError(beginErr)

		conn, err := db.GetConnection(context.Background())
		assert.Nil(t, conn)
		assert.ErrorIs(t, err, beginErr)
		assert.Equal(t, 1, logs.Len())
	})
}

func TestWithTx(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM events WHERE id = \?`).WithArgs(7).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := WithTx(context.Background(), db, func(conn *Conn) error {
			_, err := conn.Execute(context.Background(), "DELETE FROM events WHERE id = ?", 7)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		fnErr := errors.New("image cleanup failed")
		err := WithTx(context.Background(), db, func(conn *Conn) error { return fnErr })

		assert.ErrorIs(t, err, fnErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "boom", func() {
			_ = WithTx(context.Background(), db, func(conn *Conn) error { panic("boom") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsDuplicateKey(t *testing.T) {
	dup := &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry 'easter' for key 'slug'"}

	assert.True(t, IsDuplicateKey(dup))
	assert.True(t, IsDuplicateKey(fmt.Errorf("failed to create blog: %w", dup)))
	assert.False(t, IsDuplicateKey(&gomysql.MySQLError{Number: 1146}))
	assert.False(t, IsDuplicateKey(errors.New("Duplicate entry")))
}
