package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

const transactionColumns = `transaction_id, account_id, transaction_type, amount, description,
	correlation_id, transaction_date`

// TransactionRepository is the append-only transaction log. It has no update
// or delete paths, and the table's trigger refuses both.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append writes rec inside tx and fills in ID and CreatedAt.
func (r *TransactionRepository) Append(ctx context.Context, tx *sql.Tx, rec *domain.TransactionRecord) error {
	if !rec.Amount.IsPositive() {
		return fmt.Errorf("Append: %w", domain.ErrInvalidAmount)
	}
	if !rec.Type.IsValid() {
		return fmt.Errorf("Append: unknown transaction type %q", rec.Type)
	}

	var correlation uuid.NullUUID
	if rec.CorrelationID != nil {
		correlation = uuid.NullUUID{UUID: *rec.CorrelationID, Valid: true}
	}

	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (account_id, transaction_type, amount, description, correlation_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING transaction_id, transaction_date`,
		rec.AccountID, rec.Type, rec.Amount, rec.Description, correlation,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("Append: %w", classifyPQ(err))
	}
	return nil
}

// ListRecent returns up to limit records for the account, newest first.
// Ids follow insert order, which is the order rows were serialized by the
// account lock; transaction_date is informational. It takes no locks.
func (r *TransactionRepository) ListRecent(ctx context.Context, accountID int64, limit int) ([]domain.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_id = $1
		ORDER BY transaction_id DESC
		LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer rows.Close()

	records := []domain.TransactionRecord{}
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: scan: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent: rows: %w", err)
	}
	return records, nil
}

func (r *TransactionRepository) GetByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]domain.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE correlation_id = $1
		ORDER BY transaction_id`,
		correlationID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByCorrelationID: %w", err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByCorrelationID: scan: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByCorrelationID: rows: %w", err)
	}
	return records, nil
}

func scanTransaction(s scanner) (*domain.TransactionRecord, error) {
	var (
		rec         domain.TransactionRecord
		correlation uuid.NullUUID
	)
	err := s.Scan(
		&rec.ID, &rec.AccountID, &rec.Type, &rec.Amount, &rec.Description,
		&correlation, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if correlation.Valid {
		id := correlation.UUID
		rec.CorrelationID = &id
	}
	return &rec, nil
}
