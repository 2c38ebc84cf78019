package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/service/ledger"
)

type accountService interface {
	GetOwnedAccount(ctx context.Context, customerID, id int64) (*domain.Account, error)
	ListCustomerAccounts(ctx context.Context, customerID int64) ([]domain.Account, error)
}

type accountOpener interface {
	OpenAccount(ctx context.Context, req ledger.OpenAccountRequest) (*domain.Account, error)
}

type AccountHandler struct {
	accounts accountService
	opener   accountOpener
}

func NewAccountHandler(accounts accountService, opener accountOpener) *AccountHandler {
	return &AccountHandler{accounts: accounts, opener: opener}
}

type openAccountRequest struct {
	AccountType    string          `json:"account_type" validate:"omitempty,oneof=savings checking"`
	InitialDeposit decimal.Decimal `json:"initial_deposit" validate:"opening_deposit"`
}

type accountDTO struct {
	ID            int64     `json:"account_id"`
	CustomerID    int64     `json:"customer_id"`
	AccountNumber string    `json:"account_number"`
	AccountType   string    `json:"account_type"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		AccountNumber: a.AccountNumber,
		AccountType:   string(a.AccountType),
		Balance:       a.Balance.StringFixed(domain.MoneyScale),
		CreatedAt:     a.CreatedAt,
	}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := customerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.accounts.ListCustomerAccounts(r.Context(), customerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

// Open creates an account for the authenticated customer. The account type
// defaults to savings.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := customerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.opener.OpenAccount(r.Context(), ledger.OpenAccountRequest{
		CustomerID:     customerID,
		AccountType:    domain.AccountType(req.AccountType),
		InitialDeposit: req.InitialDeposit,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to open account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}
