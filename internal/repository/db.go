package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

// SetLockTimeout bounds how long row locks taken later in tx may wait.
// The setting is transaction-local and disappears on commit or rollback.
func SetLockTimeout(ctx context.Context, tx *sql.Tx, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`SELECT set_config('lock_timeout', $1, true)`,
		fmt.Sprintf("%dms", d.Milliseconds()),
	)
	if err != nil {
		return fmt.Errorf("SetLockTimeout: %w", classifyPQ(err))
	}
	return nil
}
