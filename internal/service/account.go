package service

import (
	"context"
	"fmt"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

type accountReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByCustomerID(ctx context.Context, customerID int64) ([]domain.Account, error)
}

// AccountService serves non-locking account reads for ownership checks and listings.
type AccountService struct {
	accounts accountReader
}

func NewAccountService(accounts accountReader) *AccountService {
	return &AccountService{accounts: accounts}
}

// GetOwnedAccount returns the account only if customerID owns it. Someone
// else's account is reported as not found.
func (s *AccountService) GetOwnedAccount(ctx context.Context, customerID, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetOwnedAccount: %w", err)
	}
	if account.CustomerID != customerID {
		return nil, fmt.Errorf("GetOwnedAccount: account %d: %w", id, domain.ErrNotFound)
	}
	return account, nil
}

func (s *AccountService) ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListCustomerAccounts: %w", err)
	}
	return accounts, nil
}
