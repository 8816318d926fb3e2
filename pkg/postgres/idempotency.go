package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// ProcessOnce runs fn in a transaction guarded by the idempotency_keys table.
// The key is claimed in the same transaction as fn's writes, so a redelivered
// event is skipped and a failed fn leaves the key unclaimed for retry.
// processed is false when eventID had already been handled.
func ProcessOnce(ctx context.Context, db *sql.DB, eventID string, fn func(tx *sql.Tx) error) (processed bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil || !processed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO idempotency_keys (event_id) VALUES ($1) ON CONFLICT DO NOTHING", eventID)
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err = fn(tx); err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}
