// Package ledger moves money between accounts. Every operation runs in one
// database transaction, takes row locks in ascending account id order, and
// writes its balance changes together with their transaction records.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type accountStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Account, error)
	SetBalance(ctx context.Context, tx *sql.Tx, id int64, newBalance decimal.Decimal) error
}

type transactionLog interface {
	Append(ctx context.Context, tx *sql.Tx, rec *domain.TransactionRecord) error
	ListRecent(ctx context.Context, accountID int64, limit int) ([]domain.TransactionRecord, error)
	GetByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]domain.TransactionRecord, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// Service holds no mutable state; all serialization happens in the database.
type Service struct {
	accounts    accountStore
	records     transactionLog
	events      eventPublisher
	db          *sql.DB
	lockTimeout time.Duration
}

func NewService(
	accounts accountStore,
	records transactionLog,
	events eventPublisher,
	db *sql.DB,
	lockTimeout time.Duration,
) *Service {
	return &Service{
		accounts:    accounts,
		records:     records,
		events:      events,
		db:          db,
		lockTimeout: lockTimeout,
	}
}

type DepositResult struct {
	AccountID  int64
	NewBalance decimal.Decimal
	Record     domain.TransactionRecord
}

// WithdrawResult reports Success=false when the balance could not cover the
// amount. Balance is the balance after the operation either way.
type WithdrawResult struct {
	Success bool
	Balance decimal.Decimal
	Record  *domain.TransactionRecord
}

// TransferResult reports Success=false when the source balance could not
// cover the amount; nothing was written in that case.
type TransferResult struct {
	Success       bool
	FromBalance   decimal.Decimal
	CorrelationID uuid.UUID
	Debit         *domain.TransactionRecord
	Credit        *domain.TransactionRecord
}
