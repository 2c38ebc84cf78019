package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

const accountColumns = `account_id, customer_id, account_number, account_type, balance, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: account %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE customer_id = $1 ORDER BY account_id`, customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByCustomerID: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByCustomerID: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByCustomerID: rows: %w", err)
	}
	return accounts, nil
}

// Create inserts the account inside tx and fills in ID and CreatedAt.
func (r *AccountRepository) Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO accounts (customer_id, account_number, account_type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING account_id, created_at`,
		account.CustomerID, account.AccountNumber, account.AccountType, account.Balance,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", classifyPQ(err))
	}
	return nil
}

// LockForUpdate takes a row lock on the account for the rest of tx and
// returns its current state. It blocks while another transaction holds the lock.
func (r *AccountRepository) LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id = $1 FOR UPDATE`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("LockForUpdate: account %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("LockForUpdate: %w", classifyPQ(err))
	}
	return a, nil
}

// SetBalance writes a new balance inside tx. Negative balances are rejected
// by the accounts_balance_non_negative constraint, reported as ErrBalanceInvariant.
func (r *AccountRepository) SetBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE account_id = $2`,
		newBalance, id,
	)
	if err != nil {
		return fmt.Errorf("SetBalance: %w", classifyPQ(err))
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SetBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("SetBalance: account %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(
		&a.ID, &a.CustomerID, &a.AccountNumber, &a.AccountType, &a.Balance, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
