package service

import (
	"context"
	"log/slog"
	"time"
)

type expiredCleaner interface {
	CleanExpired(ctx context.Context) (int64, error)
}

// IdempotencyJanitor periodically deletes expired idempotency cache entries.
type IdempotencyJanitor struct {
	cache    expiredCleaner
	logger   *slog.Logger
	interval time.Duration
}

func NewIdempotencyJanitor(cache expiredCleaner, logger *slog.Logger, interval time.Duration) *IdempotencyJanitor {
	return &IdempotencyJanitor{
		cache:    cache,
		logger:   logger,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled.
func (j *IdempotencyJanitor) Start(ctx context.Context) {
	j.logger.Info("idempotency janitor started", "interval", j.interval)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idempotency janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *IdempotencyJanitor) sweep(ctx context.Context) {
	removed, err := j.cache.CleanExpired(ctx)
	if err != nil {
		j.logger.Error("failed to clean expired idempotency entries", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("expired idempotency entries removed", "count", removed)
	}
}
