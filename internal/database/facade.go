// Package database is the persistence facade: raw statements and transactions over gorm,
// with every read normalized to rows and a row count.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrTxDone is returned by a Conn used after Commit or Rollback
var ErrTxDone = errors.New("transaction already committed or rolled back")

// Row is one result row keyed by column name.
// Byte slices from the driver are converted to strings.
type Row map[string]any

// Result is the normalized shape of every read
type Result struct {
	Rows     []Row `json:"rows"`
	RowCount int   `json:"rowCount"`
}

// ExecResult is the metadata of a write
type ExecResult struct {
	RowsAffected int64 `json:"rowsAffected"`
	LastInsertID int64 `json:"lastInsertId"`
}

// Querier is implemented by DB and Conn
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*Result, error)
	Execute(ctx context.Context, query string, args ...any) (*ExecResult, error)
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Conn)(nil)
)

// DB forwards statements to gorm
type DB struct {
	gorm   *gorm.DB
	logger *zap.Logger
}

// New wraps an opened gorm handle
func New(g *gorm.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{gorm: g, logger: logger}
}

// Query runs a read and returns every row
func (d *DB) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	return runQuery(ctx, d.gorm, d.logger, query, args)
}

// Execute runs a write
func (d *DB) Execute(ctx context.Context, query string, args ...any) (*ExecResult, error) {
	return runExec(ctx, d.gorm, d.logger, query, args)
}

// GetConnection begins a transaction. The caller must call Commit or Rollback on every path.
func (d *DB) GetConnection(ctx context.Context) (*Conn, error) {
	tx := d.gorm.WithContext(ctx).Begin()
	if tx.Error != nil {
		d.logger.Error("failed to begin transaction", zap.Error(tx.Error))
		return nil, tx.Error
	}
	return &Conn{tx: tx, logger: d.logger}, nil
}

// Ping checks the connection to the engine
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Conn is a transactional handle
type Conn struct {
	tx     *gorm.DB
	logger *zap.Logger
	done   bool
}

// Query runs a read inside the transaction
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if c.done {
		return nil, ErrTxDone
	}
	return runQuery(ctx, c.tx, c.logger, query, args)
}

// Execute runs a write inside the transaction
func (c *Conn) Execute(ctx context.Context, query string, args ...any) (*ExecResult, error) {
	if c.done {
		return nil, ErrTxDone
	}
	return runExec(ctx, c.tx, c.logger, query, args)
}

// Commit commits the transaction
func (c *Conn) Commit() error {
	if c.done {
		return ErrTxDone
	}
	c.done = true
	if err := c.tx.Commit().Error; err != nil {
		c.logger.Error("failed to commit transaction", zap.Error(err))
		return err
	}
	return nil
}

// Rollback aborts the transaction
func (c *Conn) Rollback() error {
	if c.done {
		return ErrTxDone
	}
	c.done = true
	if err := c.tx.Rollback().Error; err != nil {
		c.logger.Error("failed to roll back transaction", zap.Error(err))
		return err
	}
	return nil
}

func runQuery(ctx context.Context, g *gorm.DB, logger *zap.Logger, query string, args []any) (*Result, error) {
	rows, err := g.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		logger.Error("query failed", zap.String("sql", query), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		logger.Error("query failed", zap.String("sql", query), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func runExec(ctx context.Context, g *gorm.DB, logger *zap.Logger, query string, args []any) (*ExecResult, error) {
	// gorm's Exec drops LastInsertId, so the statement goes to the connection pool of the session directly
	res, err := g.WithContext(ctx).Statement.ConnPool.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("statement failed", zap.String("sql", query), zap.Error(err))
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		logger.Error("statement failed", zap.String("sql", query), zap.Error(err))
		return nil, err
	}
	// Statements without an auto increment column report 0
	lastID, _ := res.LastInsertId()

	return &ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

func scanRows(rows *sql.Rows) (*Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Rows: []Row{}}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// First returns the first row, or nil
func (r *Result) First() Row {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// String returns the column as a string; NULL and missing columns give ""
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// StringPtr returns nil for NULL
func (r Row) StringPtr(column string) *string {
	if r[column] == nil {
		return nil
	}
	s := r.String(column)
	return &s
}

// Int64 returns the column as an integer; NULL and non-numeric values give 0
func (r Row) Int64(column string) int64 {
	switch v := r[column].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		var n int64
		if _, err := fmt.Sscan(v, &n); err == nil {
			return n
		}
	}
	return 0
}

// Bool returns the column as a boolean (TINYINT(1) columns arrive as integers)
func (r Row) Bool(column string) bool {
	switch v := r[column].(type) {
	case bool:
		return v
	case string:
		return v == "1" || v == "true"
	default:
		return r.Int64(column) != 0
	}
}

// Time returns the column as a time; ok is false for NULL
func (r Row) Time(column string) (time.Time, bool) {
	switch v := r[column].(type) {
	case time.Time:
		return v, true
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// TimePtr returns nil for NULL
func (r Row) TimePtr(column string) *time.Time {
	t, ok := r.Time(column)
	if !ok {
		return nil
	}
	return &t
}
