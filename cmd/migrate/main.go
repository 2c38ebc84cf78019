// Command migrate applies or rolls back the ledger schema.
//
//	migrate up
//	migrate down [steps]
//	migrate version
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Deepesh2575/Online-Banking-System/internal/config"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s up | down [steps] | version\n", os.Args[0])
	}
	attempts := flag.Int("attempts", 10, "database connection attempts")
	flag.Parse()

	if err := run(flag.Args(), *attempts); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, attempts int) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Init("ledger-migrate", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}, attempts)
	if err != nil {
		return err
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := repository.Migrate(ctx, db); err != nil {
			return err
		}
	case "down":
		steps := 1
		if len(args) > 1 {
			steps, err = strconv.Atoi(args[1])
			if err != nil || steps <= 0 {
				return fmt.Errorf("down: steps must be a positive integer, got %q", args[1])
			}
		}
		if err := repository.MigrateDown(ctx, db, steps); err != nil {
			return err
		}
	case "version":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}

	version, dirty, err := repository.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("schema version", "version", version, "dirty", dirty)
	return nil
}
