package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/events"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
	"github.com/Deepesh2575/Online-Banking-System/internal/service/ledger"
	"github.com/Deepesh2575/Online-Banking-System/internal/testutil"
)

func setupLedger(t *testing.T, db *sql.DB, lockTimeout time.Duration) *ledger.Service {
	t.Helper()
	return ledger.NewService(
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		events.NewLogPublisher(slog.Default()),
		db,
		lockTimeout,
	)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertBalance(t *testing.T, db *sql.DB, accountID int64, want string) {
	t.Helper()
	got := testutil.GetAccountBalance(t, db, accountID)
	assert.True(t, got.Equal(money(want)), "account %d: balance %s, want %s", accountID, got.StringFixed(2), want)
}

func TestLedger_ExampleScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	a := testutil.SeedAccount(t, db, 1, "100.00")
	b := testutil.SeedAccount(t, db, 2, "0.00")

	withdrawal, err := svc.Withdraw(ctx, a.ID, money("150.00"))
	require.NoError(t, err)
	assert.False(t, withdrawal.Success)
	assertBalance(t, db, a.ID, "100.00")
	assert.Equal(t, 0, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeWithdrawal))

	deposit, err := svc.Deposit(ctx, a.ID, money("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "150.00", deposit.NewBalance.StringFixed(2))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeDeposit))

	transfer, err := svc.Transfer(ctx, a.ID, b.ID, money("150.00"))
	require.NoError(t, err)
	assert.True(t, transfer.Success)
	assertBalance(t, db, a.ID, "0.00")
	assertBalance(t, db, b.ID, "150.00")
	assert.Equal(t, 1, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeTransferOut))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, b.ID, domain.TransactionTypeTransferIn))

	pair, err := repository.NewTransactionRepository(db).GetByCorrelationID(ctx, transfer.CorrelationID)
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, "Transfer to account "+strconv.FormatInt(b.ID, 10), pair[0].Description)
	assert.Equal(t, "Transfer from account "+strconv.FormatInt(a.ID, 10), pair[1].Description)

	history, err := svc.ListTransactions(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.TransactionTypeTransferOut, history[0].Type)
	assert.Equal(t, domain.TransactionTypeDeposit, history[1].Type)

	balance, err := svc.GetBalance(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", balance.StringFixed(2))
}

func TestWithdraw_ConcurrentNoOverdraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, 1, "100.00")

	const attempts = 10
	var succeeded atomic.Int32

	var g errgroup.Group
	for range attempts {
		g.Go(func() error {
			result, err := svc.Withdraw(ctx, acct.ID, money("30.00"))
			if err != nil {
				return err
			}
			if result.Success {
				succeeded.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(3), succeeded.Load())
	assertBalance(t, db, acct.ID, "10.00")
	assert.Equal(t, 3, testutil.CountTransactions(t, db, acct.ID, domain.TransactionTypeWithdrawal))
}

func TestTransfer_OppositeDirectionsNoDeadlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 10*time.Second)
	ctx := context.Background()

	a := testutil.SeedAccount(t, db, 1, "1000.00")
	b := testutil.SeedAccount(t, db, 2, "1000.00")

	const rounds = 25

	var g errgroup.Group
	for range rounds {
		g.Go(func() error {
			result, err := svc.Transfer(ctx, a.ID, b.ID, money("10.00"))
			if err != nil {
				return err
			}
			if !result.Success {
				return errors.New("a->b declined")
			}
			return nil
		})
		g.Go(func() error {
			result, err := svc.Transfer(ctx, b.ID, a.ID, money("7.00"))
			if err != nil {
				return err
			}
			if !result.Success {
				return errors.New("b->a declined")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait(), "no transfer may abort with a deadlock")

	assertBalance(t, db, a.ID, "925.00")
	assertBalance(t, db, b.ID, "1075.00")

	total := testutil.GetAccountBalance(t, db, a.ID).Add(testutil.GetAccountBalance(t, db, b.ID))
	assert.True(t, total.Equal(money("2000.00")))
	assert.Equal(t, rounds*2, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeTransferOut)+
		testutil.CountTransactions(t, db, b.ID, domain.TransactionTypeTransferOut))
}

func TestLedger_MixedConcurrencyKeepsLedgerConsistent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 10*time.Second)
	ctx := context.Background()

	accounts := []*domain.Account{
		testutil.SeedAccount(t, db, 1, "50.00"),
		testutil.SeedAccount(t, db, 2, "50.00"),
		testutil.SeedAccount(t, db, 3, "50.00"),
	}
	initial := money("50.00")

	var g errgroup.Group
	for i := range 60 {
		from := accounts[i%3]
		to := accounts[(i+1)%3]
		g.Go(func() error {
			var err error
			switch i % 4 {
			case 0:
				_, err = svc.Deposit(ctx, from.ID, money("5.00"))
			case 1:
				_, err = svc.Withdraw(ctx, from.ID, money("20.00"))
			default:
				_, err = svc.Transfer(ctx, from.ID, to.ID, money("15.50"))
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, acct := range accounts {
		balance := testutil.GetAccountBalance(t, db, acct.ID)
		assert.False(t, balance.IsNegative(), "account %d went negative", acct.ID)
		assert.True(t, balance.Equal(initial.Add(testutil.SumTransactions(t, db, acct.ID))),
			"account %d balance %s does not match its records", acct.ID, balance)
	}
}

func TestWithdraw_WaitsForLockAndSeesCommittedBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, 1, "100.00")

	holder, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer holder.Rollback()

	_, err = holder.ExecContext(ctx, `SELECT balance FROM accounts WHERE account_id = $1 FOR UPDATE`, acct.ID)
	require.NoError(t, err)
	_, err = holder.ExecContext(ctx, `UPDATE accounts SET balance = 10.00 WHERE account_id = $1`, acct.ID)
	require.NoError(t, err)

	type outcome struct {
		result *ledger.WithdrawResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := svc.Withdraw(ctx, acct.ID, money("50.00"))
		done <- outcome{result, err}
	}()

	select {
	case <-done:
		t.Fatal("withdraw finished while another transaction held the row lock")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, holder.Commit())

	got := <-done
	require.NoError(t, got.err)
	assert.False(t, got.result.Success, "withdraw must observe the committed balance of 10.00")
	assert.Equal(t, "10.00", got.result.Balance.StringFixed(2))
}

func TestWithdraw_LockTimeoutAborts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 200*time.Millisecond)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, 1, "100.00")

	holder, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = holder.ExecContext(ctx, `SELECT 1 FROM accounts WHERE account_id = $1 FOR UPDATE`, acct.ID)
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, acct.ID, money("10.00"))
	require.ErrorIs(t, err, domain.ErrAborted)
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	require.NoError(t, holder.Rollback())
	assertBalance(t, db, acct.ID, "100.00")
	assert.Equal(t, 0, testutil.CountTransactions(t, db, acct.ID, domain.TransactionTypeWithdrawal))
}

func TestTransfer_MissingDestinationLeavesSourceUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	a := testutil.SeedAccount(t, db, 1, "100.00")

	_, err := svc.Transfer(ctx, a.ID, a.ID+1000, money("10.00"))
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrAborted)
	assertBalance(t, db, a.ID, "100.00")
	assert.Equal(t, 0, testutil.CountTransactions(t, db, a.ID, domain.TransactionTypeTransferOut))
}

func TestDeposit_RepeatedCallsAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, 1, "0.00")

	first, err := svc.Deposit(ctx, acct.ID, money("25.00"))
	require.NoError(t, err)
	second, err := svc.Deposit(ctx, acct.ID, money("25.00"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Record.ID, second.Record.ID)
	assert.Greater(t, second.Record.ID, first.Record.ID)
	assertBalance(t, db, acct.ID, "50.00")
	assert.Equal(t, 2, testutil.CountTransactions(t, db, acct.ID, domain.TransactionTypeDeposit))
}

func TestOpenAccount_InitialDeposit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupLedger(t, db, 5*time.Second)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{
		CustomerID:     42,
		AccountType:    domain.AccountTypeChecking,
		InitialDeposit: money("75.25"),
	})
	require.NoError(t, err)

	assertBalance(t, db, acct.ID, "75.25")
	records, err := svc.ListTransactions(ctx, acct.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Initial account deposit", records[0].Description)
	assert.True(t, records[0].Amount.Equal(money("75.25")))

	empty, err := svc.OpenAccount(ctx, ledger.OpenAccountRequest{CustomerID: 42})
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeSavings, empty.AccountType)
	assert.NotEqual(t, acct.AccountNumber, empty.AccountNumber)
	assert.Equal(t, 0, testutil.CountTransactions(t, db, empty.ID, domain.TransactionTypeDeposit))
}
