package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking:
		return true
	}
	return false
}

// Account is owned by exactly one customer. Balance is only mutated by the
// ledger engine and never goes below zero once committed.
type Account struct {
	ID            int64
	CustomerID    int64
	AccountNumber string
	AccountType   AccountType
	Balance       decimal.Decimal
	CreatedAt     time.Time
}
