package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

type stubAccounts struct {
	byID map[int64]domain.Account
}

func (s *stubAccounts) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *stubAccounts) GetByCustomerID(_ context.Context, customerID int64) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range s.byID {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestAccountService_GetOwnedAccount(t *testing.T) {
	svc := NewAccountService(&stubAccounts{byID: map[int64]domain.Account{
		1: {ID: 1, CustomerID: 10},
		2: {ID: 2, CustomerID: 20},
	}})

	tests := []struct {
		name       string
		customerID int64
		accountID  int64
		wantErr    error
	}{
		{name: "owner", customerID: 10, accountID: 1},
		{name: "someone else's account", customerID: 10, accountID: 2, wantErr: domain.ErrNotFound},
		{name: "missing account", customerID: 10, accountID: 3, wantErr: domain.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acct, err := svc.GetOwnedAccount(context.Background(), tc.customerID, tc.accountID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, acct)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.accountID, acct.ID)
		})
	}
}

type countingCleaner struct {
	calls atomic.Int32
	err   error
}

func (c *countingCleaner) CleanExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestIdempotencyJanitor_SweepsUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{}
	janitor := NewIdempotencyJanitor(cleaner, slog.Default(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestIdempotencyJanitor_KeepsRunningAfterError(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("db down")}
	janitor := NewIdempotencyJanitor(cleaner, slog.Default(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go janitor.Start(ctx)

	require.Eventually(t, func() bool { return cleaner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}
