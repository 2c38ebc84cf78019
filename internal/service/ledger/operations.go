package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
)

func (s *Service) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*DepositResult, error) {
	attrs := []any{"account_id", accountID, "amount", amount.StringFixed(domain.MoneyScale)}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, reject(ctx, "Deposit", err, attrs...)
	}

	var result DepositResult
	_, err := s.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		acct, err := s.accounts.LockForUpdate(ctx, tx, accountID)
		if err != nil {
			return false, err
		}

		newBalance := acct.Balance.Add(amount)
		if newBalance.GreaterThan(domain.MaxAmount) {
			return false, fmt.Errorf("account %d: %w", accountID, domain.ErrBalanceLimit)
		}
		if err := s.accounts.SetBalance(ctx, tx, accountID, newBalance); err != nil {
			return false, err
		}

		rec := domain.TransactionRecord{
			AccountID:   accountID,
			Type:        domain.TransactionTypeDeposit,
			Amount:      amount,
			Description: "Deposit",
		}
		if err := s.records.Append(ctx, tx, &rec); err != nil {
			return false, err
		}

		result = DepositResult{AccountID: accountID, NewBalance: newBalance, Record: rec}
		return true, nil
	})
	if err != nil {
		return nil, fail(ctx, "Deposit", err, attrs...)
	}

	logging.FromContext(ctx).With(attrs...).Info("deposit committed",
		"outcome", OutcomeCommitted,
		"transaction_id", result.Record.ID,
		"new_balance", result.NewBalance.StringFixed(domain.MoneyScale),
	)
	s.publish(ctx, domain.LedgerEvent{
		Type:       domain.LedgerEventDeposit,
		AccountIDs: []int64{accountID},
		Records:    []domain.TransactionRecord{result.Record},
		OccurredAt: time.Now().UTC(),
	})
	return &result, nil
}

// Withdraw debits the account if its locked balance covers amount. An
// uncovered amount is not an error: the transaction is rolled back and
// Success is false.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*WithdrawResult, error) {
	attrs := []any{"account_id", accountID, "amount", amount.StringFixed(domain.MoneyScale)}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, reject(ctx, "Withdraw", err, attrs...)
	}

	var result WithdrawResult
	committed, err := s.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		acct, err := s.accounts.LockForUpdate(ctx, tx, accountID)
		if err != nil {
			return false, err
		}

		if acct.Balance.LessThan(amount) {
			result = WithdrawResult{Success: false, Balance: acct.Balance}
			return false, nil
		}

		newBalance := acct.Balance.Sub(amount)
		if err := s.accounts.SetBalance(ctx, tx, accountID, newBalance); err != nil {
			return false, err
		}

		rec := domain.TransactionRecord{
			AccountID:   accountID,
			Type:        domain.TransactionTypeWithdrawal,
			Amount:      amount,
			Description: "Withdrawal",
		}
		if err := s.records.Append(ctx, tx, &rec); err != nil {
			return false, err
		}

		result = WithdrawResult{Success: true, Balance: newBalance, Record: &rec}
		return true, nil
	})
	if err != nil {
		return nil, fail(ctx, "Withdraw", err, attrs...)
	}

	log := logging.FromContext(ctx).With(attrs...)
	if !committed {
		log.Info("withdrawal declined",
			"outcome", OutcomeDeclined,
			"reason", "insufficient_funds",
			"balance", result.Balance.StringFixed(domain.MoneyScale),
		)
		return &result, nil
	}

	log.Info("withdrawal committed",
		"outcome", OutcomeCommitted,
		"transaction_id", result.Record.ID,
		"new_balance", result.Balance.StringFixed(domain.MoneyScale),
	)
	s.publish(ctx, domain.LedgerEvent{
		Type:       domain.LedgerEventWithdrawal,
		AccountIDs: []int64{accountID},
		Records:    []domain.TransactionRecord{*result.Record},
		OccurredAt: time.Now().UTC(),
	})
	return &result, nil
}

// Transfer moves amount from one account to another. Both rows are locked in
// ascending id order before either balance is read. A missing account on
// either side fails with domain.ErrNotFound.
func (s *Service) Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal) (*TransferResult, error) {
	attrs := []any{
		"from_account_id", fromAccountID,
		"to_account_id", toAccountID,
		"amount", amount.StringFixed(domain.MoneyScale),
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return nil, reject(ctx, "Transfer", err, attrs...)
	}
	if fromAccountID == toAccountID {
		return nil, reject(ctx, "Transfer", domain.ErrSameAccount, attrs...)
	}

	correlationID := uuid.New()

	var result TransferResult
	committed, err := s.inTx(ctx, func(tx *sql.Tx) (bool, error) {
		locked, err := lockAccountsInOrder(ctx, tx, s.accounts, fromAccountID, toAccountID)
		if err != nil {
			return false, err
		}
		from, to := locked[fromAccountID], locked[toAccountID]

		if from.Balance.LessThan(amount) {
			result = TransferResult{Success: false, FromBalance: from.Balance}
			return false, nil
		}
		toBalance := to.Balance.Add(amount)
		if toBalance.GreaterThan(domain.MaxAmount) {
			return false, fmt.Errorf("account %d: %w", toAccountID, domain.ErrBalanceLimit)
		}

		fromBalance := from.Balance.Sub(amount)
		if err := s.accounts.SetBalance(ctx, tx, fromAccountID, fromBalance); err != nil {
			return false, err
		}
		debit := domain.TransactionRecord{
			AccountID:     fromAccountID,
			Type:          domain.TransactionTypeTransferOut,
			Amount:        amount,
			Description:   fmt.Sprintf("Transfer to account %d", toAccountID),
			CorrelationID: &correlationID,
		}
		if err := s.records.Append(ctx, tx, &debit); err != nil {
			return false, err
		}

		if err := s.accounts.SetBalance(ctx, tx, toAccountID, toBalance); err != nil {
			return false, err
		}
		credit := domain.TransactionRecord{
			AccountID:     toAccountID,
			Type:          domain.TransactionTypeTransferIn,
			Amount:        amount,
			Description:   fmt.Sprintf("Transfer from account %d", fromAccountID),
			CorrelationID: &correlationID,
		}
		if err := s.records.Append(ctx, tx, &credit); err != nil {
			return false, err
		}

		result = TransferResult{
			Success:       true,
			FromBalance:   fromBalance,
			CorrelationID: correlationID,
			Debit:         &debit,
			Credit:        &credit,
		}
		return true, nil
	})
	if err != nil {
		return nil, fail(ctx, "Transfer", err, attrs...)
	}

	log := logging.FromContext(ctx).With(attrs...)
	if !committed {
		log.Info("transfer declined",
			"outcome", OutcomeDeclined,
			"reason", "insufficient_funds",
			"balance", result.FromBalance.StringFixed(domain.MoneyScale),
		)
		return &result, nil
	}

	log.Info("transfer committed",
		"outcome", OutcomeCommitted,
		"correlation_id", correlationID,
		"debit_id", result.Debit.ID,
		"credit_id", result.Credit.ID,
	)
	s.publish(ctx, domain.LedgerEvent{
		Type:       domain.LedgerEventTransfer,
		AccountIDs: []int64{fromAccountID, toAccountID},
		Records:    []domain.TransactionRecord{*result.Debit, *result.Credit},
		OccurredAt: time.Now().UTC(),
	})
	return &result, nil
}
