package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrSameAccount            = errors.New("cannot transfer to same account")
	ErrInvalidAccountType     = errors.New("account type must be savings or checking")
	ErrInvalidCustomer        = errors.New("customer id must be positive")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrBalanceLimit           = errors.New("balance would exceed the maximum account balance")

	// ErrAborted marks an operation that was rolled back because of an
	// infrastructure failure. Callers may retry.
	ErrAborted = errors.New("transaction aborted")

	// ErrBalanceInvariant is the storage layer refusing a negative balance.
	// It only reaches callers joined with ErrAborted.
	ErrBalanceInvariant = errors.New("storage rejected negative balance")

	ErrLockTimeout = errors.New("lock wait timed out")
)
