package database

import (
	"context"
	"fmt"
)

// WithTx runs fn inside a transaction, committing when it returns nil and rolling back
// when it returns an error or panics
func WithTx(ctx context.Context, db *DB, fn func(conn *Conn) error) (err error) {
	conn, err := db.GetConnection(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = conn.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := conn.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := conn.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(conn)
	return
}
