package ledger

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
)

const (
	accountNumberDigits   = 12
	accountNumberAttempts = 5
)

type OpenAccountRequest struct {
	CustomerID     int64
	AccountType    domain.AccountType
	InitialDeposit decimal.Decimal
}

// OpenAccount creates an account for the customer. A positive initial deposit
// is credited in the same transaction and recorded as a deposit.
func (s *Service) OpenAccount(ctx context.Context, req OpenAccountRequest) (*domain.Account, error) {
	if req.AccountType == "" {
		req.AccountType = domain.AccountTypeSavings
	}
	attrs := []any{
		"customer_id", req.CustomerID,
		"account_type", req.AccountType,
		"initial_deposit", req.InitialDeposit.StringFixed(domain.MoneyScale),
	}

	if req.CustomerID <= 0 {
		return nil, reject(ctx, "OpenAccount", domain.ErrInvalidCustomer, attrs...)
	}
	if !req.AccountType.IsValid() {
		return nil, reject(ctx, "OpenAccount", domain.ErrInvalidAccountType, attrs...)
	}
	if err := domain.ValidateInitialDeposit(req.InitialDeposit); err != nil {
		return nil, reject(ctx, "OpenAccount", err, attrs...)
	}

	var (
		account *domain.Account
		records []domain.TransactionRecord
		err     error
	)
	for attempt := 1; attempt <= accountNumberAttempts; attempt++ {
		account, records, err = s.openAccount(ctx, req)
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			break
		}
		logging.FromContext(ctx).Warn("account number collision, retrying", "attempt", attempt)
	}
	if err != nil {
		return nil, fail(ctx, "OpenAccount", err, attrs...)
	}

	logging.FromContext(ctx).With(attrs...).Info("account opened",
		"outcome", OutcomeCommitted,
		"account_id", account.ID,
	)
	s.publish(ctx, domain.LedgerEvent{
		Type:       domain.LedgerEventAccountOpened,
		AccountIDs: []int64{account.ID},
		Records:    records,
		OccurredAt: time.Now().UTC(),
	})
	return account, nil
}

func (s *Service) openAccount(ctx context.Context, req OpenAccountRequest) (*domain.Account, []domain.TransactionRecord, error) {
	number, err := generateAccountNumber()
	if err != nil {
		return nil, nil, err
	}

	account := &domain.Account{
		CustomerID:    req.CustomerID,
		AccountNumber: number,
		AccountType:   req.AccountType,
		Balance:       req.InitialDeposit,
	}
	var records []domain.TransactionRecord

	_, err = s.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		if err := s.accounts.Create(ctx, tx, account); err != nil {
			return false, err
		}
		if !req.InitialDeposit.IsPositive() {
			return true, nil
		}

		rec := domain.TransactionRecord{
			AccountID:   account.ID,
			Type:        domain.TransactionTypeDeposit,
			Amount:      req.InitialDeposit,
			Description: "Initial account deposit",
		}
		if err := s.records.Append(ctx, tx, &rec); err != nil {
			return false, err
		}
		records = append(records, rec)
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return account, records, nil
}

func generateAccountNumber() (string, error) {
	digits := make([]byte, accountNumberDigits)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generateAccountNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
