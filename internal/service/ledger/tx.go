package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
)

// Outcome is the terminal state of a ledger operation, logged with every operation.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeDeclined  Outcome = "declined"
	OutcomeRejected  Outcome = "rejected"
	OutcomeAborted   Outcome = "aborted"
)

// inTx runs fn in a transaction bounded by the configured lock timeout.
// fn returns commit=false to roll back a declined operation without error.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) (commit bool, err error)) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := repository.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return false, err
	}

	commit, err := fn(tx)
	if err != nil {
		return false, err
	}

	if !commit {
		if err := tx.Rollback(); err != nil {
			return false, fmt.Errorf("rollback: %w", err)
		}
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// lockAccountsInOrder locks every id in ascending order no matter the order
// given, so two transfers over the same pair can never wait on each other in a cycle.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountStore, ids ...int64) (map[int64]*domain.Account, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	result := make(map[int64]*domain.Account, len(sorted))
	for _, id := range sorted {
		acct, err := accounts.LockForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = acct
	}
	return result, nil
}

// reject logs a caller error detected before any transaction was opened.
func reject(ctx context.Context, op string, err error, attrs ...any) error {
	logging.FromContext(ctx).With(attrs...).Info("ledger operation rejected",
		"op", op,
		"outcome", OutcomeRejected,
		"error", err,
	)
	return fmt.Errorf("%s: %w", op, err)
}

// fail turns an error from inside the transaction into the error returned to
// the caller. A missing account and a credit past the balance ceiling stay
// caller errors; retrying cannot change either. Everything else, including a
// storage-level balance rejection, is ErrAborted.
//
// NotFound is not joined with ErrAborted; the decision is recorded under
// "NotFound inside a transaction" in DESIGN.md. It is still a hard error,
// never Success=false.
func fail(ctx context.Context, op string, err error, attrs ...any) error {
	log := logging.FromContext(ctx).With(attrs...)

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrBalanceLimit):
		log.Info("ledger operation rejected", "op", op, "outcome", OutcomeRejected, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, domain.ErrBalanceInvariant):
		log.Error("ledger operation aborted",
			"op", op,
			"outcome", OutcomeAborted,
			"invariant_breach", true,
			"error", err,
		)
	default:
		log.Error("ledger operation aborted", "op", op, "outcome", OutcomeAborted, "error", err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrAborted, err)
}

func (s *Service) publish(ctx context.Context, event domain.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("ledger event not published",
			"event_type", event.Type,
			"account_ids", event.AccountIDs,
			"error", err,
		)
	}
}
