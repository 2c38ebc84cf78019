package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

const (
	pqCheckViolation    = "23514"
	pqUniqueViolation   = "23505"
	pqLockNotAvailable  = "55P03"
	pqDeadlockDetected  = "40P01"
	pqQueryCanceled     = "57014"
	pqSerializationFail = "40001"
	pqNumericOverflow   = "22003"

	balanceConstraint       = "accounts_balance_non_negative"
	amountConstraint        = "transactions_amount_positive"
	accountNumberConstraint = "accounts_account_number_key"
)

// classifyPQ attaches a domain sentinel to postgres errors the ledger reacts to.
// The original error stays in the chain.
func classifyPQ(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqCheckViolation:
		switch pqErr.Constraint {
		case balanceConstraint:
			return fmt.Errorf("%w: %w", domain.ErrBalanceInvariant, err)
		case amountConstraint:
			return fmt.Errorf("%w: %w", domain.ErrInvalidAmount, err)
		}
	case pqUniqueViolation:
		if pqErr.Constraint == accountNumberConstraint {
			return fmt.Errorf("%w: %w", domain.ErrDuplicateAccountNumber, err)
		}
	case pqNumericOverflow:
		return fmt.Errorf("%w: %w", domain.ErrBalanceLimit, err)
	case pqLockNotAvailable, pqDeadlockDetected, pqQueryCanceled, pqSerializationFail:
		return fmt.Errorf("%w: %w", domain.ErrLockTimeout, err)
	}
	return err
}
