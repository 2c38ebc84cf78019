// Package events publishes committed ledger operations to downstream consumers.
// Delivery is best-effort and happens after commit.
package events

import (
	"context"
	"log/slog"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

// LogPublisher writes each event to a logger. It is the sink used when no
// broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	ids := make([]int64, len(event.Records))
	for i, rec := range event.Records {
		ids[i] = rec.ID
	}
	p.logger.InfoContext(ctx, "ledger event",
		"event_type", event.Type,
		"account_ids", event.AccountIDs,
		"transaction_ids", ids,
		"occurred_at", event.OccurredAt,
	)
	return nil
}
