package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

var accountSeq atomic.Int64

// SeedAccount inserts an account directly, bypassing the ledger, so no
// transaction record exists for the starting balance.
func SeedAccount(t *testing.T, db *sql.DB, customerID int64, balance string) *domain.Account {
	t.Helper()

	a := &domain.Account{
		CustomerID:    customerID,
		AccountNumber: fmt.Sprintf("9%011d", accountSeq.Add(1)),
		AccountType:   domain.AccountTypeSavings,
		Balance:       decimal.RequireFromString(balance),
	}

	err := db.QueryRow(
		`INSERT INTO accounts (customer_id, account_number, account_type, balance)
		 VALUES ($1, $2, $3, $4)
		 RETURNING account_id, created_at`,
		a.CustomerID, a.AccountNumber, a.AccountType, a.Balance,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		t.Fatalf("seed account for customer %d: %v", customerID, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %d: %v", accountID, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, accountID int64, txType domain.TransactionType) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE account_id = $1 AND transaction_type = $2`,
		accountID, txType,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count %s transactions for account %d: %v", txType, accountID, err)
	}
	return count
}

// SumTransactions nets all records of an account: credits minus debits.
func SumTransactions(t *testing.T, db *sql.DB, accountID int64) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN transaction_type IN ('deposit', 'transfer_in') THEN amount ELSE -amount END), 0)
		 FROM transactions WHERE account_id = $1`,
		accountID,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("sum transactions for account %d: %v", accountID, err)
	}
	return sum
}
