package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero with at most 2 decimal places"}
	ErrSameAccount         = &AppError{http.StatusBadRequest, "SAME_ACCOUNT", "Cannot transfer to the same account"}
	ErrTransactionDeclined = &AppError{http.StatusUnprocessableEntity, "TRANSACTION_DECLINED", "Transaction declined: insufficient funds"}
	ErrBalanceLimit        = &AppError{http.StatusUnprocessableEntity, "BALANCE_LIMIT_EXCEEDED", "The resulting balance would exceed the maximum account balance"}
	ErrTryAgain            = &AppError{http.StatusServiceUnavailable, "TRY_AGAIN", "The transaction could not be completed, please try again"}

	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this Idempotency-Key is still being processed"}
)
