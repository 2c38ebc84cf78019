package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

func TestClassifyPQ(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantRaw bool
	}{
		{
			name:   "negative balance check",
			err:    &pq.Error{Code: "23514", Constraint: "accounts_balance_non_negative"},
			wantIs: domain.ErrBalanceInvariant,
		},
		{
			name:   "non-positive amount check",
			err:    &pq.Error{Code: "23514", Constraint: "transactions_amount_positive"},
			wantIs: domain.ErrInvalidAmount,
		},
		{
			name:   "account number collision",
			err:    &pq.Error{Code: "23505", Constraint: "accounts_account_number_key"},
			wantIs: domain.ErrDuplicateAccountNumber,
		},
		{
			name:   "lock not available",
			err:    &pq.Error{Code: "55P03"},
			wantIs: domain.ErrLockTimeout,
		},
		{
			name:   "deadlock detected",
			err:    &pq.Error{Code: "40P01"},
			wantIs: domain.ErrLockTimeout,
		},
		{
			name:   "statement timeout",
			err:    &pq.Error{Code: "57014"},
			wantIs: domain.ErrLockTimeout,
		},
		{
			name:   "numeric overflow",
			err:    &pq.Error{Code: "22003", Message: "numeric field overflow"},
			wantIs: domain.ErrBalanceLimit,
		},
		{
			name:    "other check constraint",
			err:     &pq.Error{Code: "23514", Constraint: "accounts_account_type_check"},
			wantRaw: true,
		},
		{
			name:    "not a postgres error",
			err:     errors.New("driver: bad connection"),
			wantRaw: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyPQ(tc.err)
			if tc.wantRaw {
				assert.Same(t, tc.err, got)
				return
			}
			assert.ErrorIs(t, got, tc.wantIs)
			assert.ErrorIs(t, got, tc.err)
		})
	}
}
