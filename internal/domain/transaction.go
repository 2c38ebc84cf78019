package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeWithdrawal  TransactionType = "withdrawal"
	TransactionTypeTransferOut TransactionType = "transfer_out"
	TransactionTypeTransferIn  TransactionType = "transfer_in"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransferOut, TransactionTypeTransferIn:
		return true
	}
	return false
}

// TransactionRecord is an immutable ledger entry. Amount is always positive;
// the direction is carried by Type.
type TransactionRecord struct {
	ID            int64
	AccountID     int64
	Type          TransactionType
	Amount        decimal.Decimal
	Description   string
	CorrelationID *uuid.UUID
	CreatedAt     time.Time
}
