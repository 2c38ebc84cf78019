package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

// GetBalance reads the last committed balance without locking.
func (s *Service) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("GetBalance: %w", err)
	}
	return acct.Balance, nil
}

// ListTransactions returns the account's most recent records, newest first.
// A non-positive limit means DefaultListLimit; larger limits are capped at MaxListLimit.
func (s *Service) ListTransactions(ctx context.Context, accountID int64, limit int) ([]domain.TransactionRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}

	records, err := s.records.ListRecent(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return records, nil
}

// GetTransfer returns both legs of a transfer, debit first.
func (s *Service) GetTransfer(ctx context.Context, correlationID uuid.UUID) ([]domain.TransactionRecord, error) {
	records, err := s.records.GetByCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, fmt.Errorf("GetTransfer: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("GetTransfer: correlation %s: %w", correlationID, domain.ErrNotFound)
	}
	return records, nil
}
