package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Deepesh2575/Online-Banking-System/migrations"
)

// withMigrator runs fn against a migrator bound to one pooled connection and
// returns that connection to the pool afterwards. The pool itself stays open.
func withMigrator(ctx context.Context, db *sql.DB, fn func(m *migrate.Migrate) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("conn: %w", err)
	}
	defer conn.Close()

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	defer source.Close()

	driver, err := migratepostgres.WithConnection(ctx, conn, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	return fn(m)
}

// Migrate applies every pending up migration. An up-to-date schema is not an error.
func Migrate(ctx context.Context, db *sql.DB) error {
	err := withMigrator(ctx, db, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("up: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Migrate: %w", err)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(ctx context.Context, db *sql.DB, steps int) error {
	if steps < 1 {
		return fmt.Errorf("MigrateDown: steps must be positive, got %d", steps)
	}

	err := withMigrator(ctx, db, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("MigrateDown: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last run left it dirty.
func SchemaVersion(ctx context.Context, db *sql.DB) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := withMigrator(ctx, db, func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		version, dirty = v, d
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("SchemaVersion: %w", err)
	}
	return version, dirty, nil
}
