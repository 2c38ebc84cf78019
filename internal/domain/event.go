package domain

import "time"

type LedgerEventType string

const (
	LedgerEventDeposit       LedgerEventType = "ledger.deposit"
	LedgerEventWithdrawal    LedgerEventType = "ledger.withdrawal"
	LedgerEventTransfer      LedgerEventType = "ledger.transfer"
	LedgerEventAccountOpened LedgerEventType = "ledger.account_opened"
)

// LedgerEvent describes a committed ledger operation and the records it wrote.
type LedgerEvent struct {
	Type       LedgerEventType     `json:"type"`
	AccountIDs []int64             `json:"account_ids"`
	Records    []TransactionRecord `json:"records"`
	OccurredAt time.Time           `json:"occurred_at"`
}
