package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/service/ledger"
)

type ledgerService interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*ledger.DepositResult, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*ledger.WithdrawResult, error)
	Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal) (*ledger.TransferResult, error)
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, accountID int64, limit int) ([]domain.TransactionRecord, error)
	GetTransfer(ctx context.Context, correlationID uuid.UUID) ([]domain.TransactionRecord, error)
}

type LedgerHandler struct {
	ledger   ledgerService
	accounts accountService
}

func NewLedgerHandler(ledger ledgerService, accounts accountService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, accounts: accounts}
}

type depositRequest struct {
	AccountID int64           `json:"account_id" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"money"`
}

type withdrawRequest struct {
	AccountID int64           `json:"account_id" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"money"`
}

type transferRequest struct {
	FromAccountID int64           `json:"from_account_id" validate:"required,gt=0"`
	ToAccountID   int64           `json:"to_account_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" validate:"money"`
}

type transactionDTO struct {
	ID            int64      `json:"transaction_id"`
	AccountID     int64      `json:"account_id"`
	Type          string     `json:"transaction_type"`
	Amount        string     `json:"amount"`
	Description   string     `json:"description"`
	CorrelationID *uuid.UUID `json:"correlation_id,omitempty"`
	CreatedAt     time.Time  `json:"transaction_date"`
}

func toTransactionDTO(rec *domain.TransactionRecord) transactionDTO {
	return transactionDTO{
		ID:            rec.ID,
		AccountID:     rec.AccountID,
		Type:          string(rec.Type),
		Amount:        rec.Amount.StringFixed(domain.MoneyScale),
		Description:   rec.Description,
		CorrelationID: rec.CorrelationID,
		CreatedAt:     rec.CreatedAt,
	}
}

type depositResponse struct {
	AccountID   int64          `json:"account_id"`
	NewBalance  string         `json:"new_balance"`
	Transaction transactionDTO `json:"transaction"`
}

type withdrawResponse struct {
	AccountID   int64          `json:"account_id"`
	NewBalance  string         `json:"new_balance"`
	Transaction transactionDTO `json:"transaction"`
}

type transferResponse struct {
	CorrelationID uuid.UUID      `json:"correlation_id"`
	FromBalance   string         `json:"from_balance"`
	Debit         transactionDTO `json:"debit"`
	Credit        transactionDTO `json:"credit"`
}

type transferLegsResponse struct {
	CorrelationID uuid.UUID        `json:"correlation_id"`
	Legs          []transactionDTO `json:"legs"`
}

type balanceResponse struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}

// decodeAndValidate writes the error response itself and reports whether the
// handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return false
	}
	if fields := validateStruct(dst); len(fields) > 0 {
		RespondValidationError(w, fields)
		return false
	}
	return true
}

// ownAccount fails with 404 for accounts the caller does not own.
func (h *LedgerHandler) ownAccount(w http.ResponseWriter, r *http.Request, accountID int64) bool {
	customerID, appErr := customerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return false
	}
	if _, err := h.accounts.GetOwnedAccount(r.Context(), customerID, accountID); err != nil {
		RespondDomainError(w, err)
		return false
	}
	return true
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.ownAccount(w, r, req.AccountID) {
		return
	}

	res, err := h.ledger.Deposit(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("deposit failed", "error", err, "account_id", req.AccountID)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, depositResponse{
		AccountID:   res.AccountID,
		NewBalance:  res.NewBalance.StringFixed(domain.MoneyScale),
		Transaction: toTransactionDTO(&res.Record),
	})
}

func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.ownAccount(w, r, req.AccountID) {
		return
	}

	res, err := h.ledger.Withdraw(r.Context(), req.AccountID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("withdrawal failed", "error", err, "account_id", req.AccountID)
		RespondDomainError(w, err)
		return
	}
	if !res.Success {
		RespondAppError(w, ErrTransactionDeclined, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, withdrawResponse{
		AccountID:   req.AccountID,
		NewBalance:  res.Balance.StringFixed(domain.MoneyScale),
		Transaction: toTransactionDTO(res.Record),
	})
}

// Transfer checks ownership of the source only. The destination may belong to
// any customer and its existence is checked inside the transaction.
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !h.ownAccount(w, r, req.FromAccountID) {
		return
	}

	res, err := h.ledger.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		logging.FromContext(r.Context()).Error("transfer failed", "error", err,
			"from_account_id", req.FromAccountID, "to_account_id", req.ToAccountID)
		RespondDomainError(w, err)
		return
	}
	if !res.Success {
		RespondAppError(w, ErrTransactionDeclined, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, transferResponse{
		CorrelationID: res.CorrelationID,
		FromBalance:   res.FromBalance.StringFixed(domain.MoneyScale),
		Debit:         toTransactionDTO(res.Debit),
		Credit:        toTransactionDTO(res.Credit),
	})
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}
	if !h.ownAccount(w, r, accountID) {
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), accountID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, balanceResponse{
		AccountID: accountID,
		Balance:   balance.StringFixed(domain.MoneyScale),
	})
}

func (h *LedgerHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	accountID, appErr := accountIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit := ledger.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondValidationError(w, []FieldError{{Field: "limit", Message: "must be a positive integer"}})
			return
		}
		limit = n
	}

	if !h.ownAccount(w, r, accountID) {
		return
	}

	records, err := h.ledger.ListTransactions(r.Context(), accountID, limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transactions", "error", err, "account_id", accountID)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(records))
	for i := range records {
		dtos[i] = toTransactionDTO(&records[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

// TransferDetails is visible to the owner of either leg. Everyone else gets 404.
func (h *LedgerHandler) TransferDetails(w http.ResponseWriter, r *http.Request) {
	correlationID, err := uuid.Parse(r.PathValue("correlation_id"))
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "correlation_id", Message: "must be a UUID"}})
		return
	}
	customerID, appErr := customerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	legs, err := h.ledger.GetTransfer(r.Context(), correlationID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(r.Context()).Error("failed to load transfer", "error", err, "correlation_id", correlationID)
		}
		RespondDomainError(w, err)
		return
	}

	visible := false
	for i := range legs {
		if _, err := h.accounts.GetOwnedAccount(r.Context(), customerID, legs[i].AccountID); err == nil {
			visible = true
			break
		}
	}
	if !visible {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	dtos := make([]transactionDTO, len(legs))
	for i := range legs {
		dtos[i] = toTransactionDTO(&legs[i])
	}
	RespondSuccess(w, http.StatusOK, transferLegsResponse{CorrelationID: correlationID, Legs: dtos})
}
