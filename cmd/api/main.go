package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Deepesh2575/Online-Banking-System/internal/config"
	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
	"github.com/Deepesh2575/Online-Banking-System/internal/events"
	"github.com/Deepesh2575/Online-Banking-System/internal/handler"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
	"github.com/Deepesh2575/Online-Banking-System/internal/service"
	"github.com/Deepesh2575/Online-Banking-System/internal/service/ledger"
)

const shutdownTimeout = 30 * time.Second

type ledgerPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

func main() {
	if err := run(); err != nil {
		slog.Error("ledger-api exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Init("ledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}, 30)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := repository.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if version, _, err := repository.SchemaVersion(ctx, db); err == nil {
			logger.Info("schema ready", "version", version)
		}
	}

	checks := map[string]handler.Check{}
	publisher, closePublisher, err := newPublisher(ctx, cfg, logger, checks)
	if err != nil {
		return err
	}
	defer closePublisher()

	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	ledgerSvc := ledger.NewService(accountRepo, transactionRepo, publisher, db, cfg.LedgerLockTimeout)
	accountSvc := service.NewAccountService(accountRepo)
	janitor := service.NewIdempotencyJanitor(idempotencyRepo, logger.With("component", "idempotency_janitor"), cfg.IdempotencyCleanupInterval)

	docs, err := handler.NewDocsHandler()
	if err != nil {
		return err
	}

	mux := newRouter(routerDeps{
		health:      handler.NewHealthHandler(db, checks),
		docs:        docs,
		accounts:    handler.NewAccountHandler(accountSvc, ledgerSvc),
		ledger:      handler.NewLedgerHandler(ledgerSvc, accountSvc),
		idempotency: idempotencyRepo,
		cfg:         cfg,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		janitor.Start(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newPublisher streams ledger events to Redis when REDIS_URL is set and falls
// back to logging them otherwise.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]handler.Check) (ledgerPublisher, func(), error) {
	if cfg.RedisURL == "" {
		return events.NewLogPublisher(logger.With("component", "events")), func() {}, nil
	}

	client, err := events.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}
	return events.NewRedisStreamPublisher(client, cfg.LedgerEventStream, logger.With("component", "events")), closeFn, nil
}
