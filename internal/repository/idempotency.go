package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// IdempotencyCacheEntry is a stored HTTP response keyed by the caller's
// Idempotency-Key. Keys are scoped per customer. StatusCode 0 marks a request
// that holds the key but has not finished.
type IdempotencyCacheEntry struct {
	Key          string
	CustomerID   int64
	RequestHash  string
	StatusCode   int
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

func (e *IdempotencyCacheEntry) Pending() bool { return e.StatusCode == 0 }

type IdempotencyRepository struct {
	db *sql.DB
}

func NewIdempotencyRepository(db *sql.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key string, customerID int64) (*IdempotencyCacheEntry, error) {
	var e IdempotencyCacheEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT idempotency_key, customer_id, request_hash, status_code, response_body, created_at, expires_at
		FROM idempotency_cache
		WHERE idempotency_key = $1 AND customer_id = $2 AND expires_at > now()`,
		key, customerID,
	).Scan(&e.Key, &e.CustomerID, &e.RequestHash, &e.StatusCode, &e.ResponseBody, &e.CreatedAt, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &e, nil
}

// Reserve claims the key for a request that is about to run by inserting a
// pending row. It reports false when a live row already holds the key. An
// expired row is taken over.
func (r *IdempotencyRepository) Reserve(ctx context.Context, entry *IdempotencyCacheEntry) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO idempotency_cache (idempotency_key, customer_id, request_hash, status_code, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, 0, '', $4, $5)
		ON CONFLICT (idempotency_key, customer_id) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
			status_code = 0,
			response_body = '',
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_cache.expires_at <= now()`,
		entry.Key, entry.CustomerID, entry.RequestHash, entry.CreatedAt, entry.ExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("Reserve: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Reserve: rows affected: %w", err)
	}
	return n == 1, nil
}

// Complete stores the response on a pending row.
func (r *IdempotencyRepository) Complete(ctx context.Context, entry *IdempotencyCacheEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE idempotency_cache SET status_code = $3, response_body = $4
		WHERE idempotency_key = $1 AND customer_id = $2 AND status_code = 0`,
		entry.Key, entry.CustomerID, entry.StatusCode, entry.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("Complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Complete: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Complete: key %q: no pending reservation", entry.Key)
	}
	return nil
}

// Release drops a pending reservation so the key can be used again. Completed
// rows are left alone.
func (r *IdempotencyRepository) Release(ctx context.Context, key string, customerID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache
		WHERE idempotency_key = $1 AND customer_id = $2 AND status_code = 0`,
		key, customerID,
	)
	if err != nil {
		return fmt.Errorf("Release: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) CleanExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM idempotency_cache WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("CleanExpired: rows affected: %w", err)
	}
	return n, nil
}
