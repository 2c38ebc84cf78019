package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

const defaultStreamMaxLen = 100_000

// RedisStreamPublisher appends each event to a Redis stream as a single
// "event" field holding the JSON envelope.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

type envelope struct {
	Type    domain.LedgerEventType `json:"type"`
	Payload json.RawMessage        `json:"payload"`
}

func NewRedisStreamPublisher(client *redis.Client, stream string, logger *slog.Logger) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: defaultStreamMaxLen,
		logger: logger,
	}
}

// NewRedisClient parses url (redis://...) and checks the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("NewRedisClient: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedisClient: ping: %w", err)
	}
	return client, nil
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("Publish: marshal event: %w", err)
	}

	env, err := json.Marshal(envelope{Type: event.Type, Payload: payload})
	if err != nil {
		return fmt.Errorf("Publish: marshal envelope: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{"event": string(env)},
	}).Result()
	if err != nil {
		return fmt.Errorf("Publish: xadd %s: %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "ledger event published", "stream", p.stream, "entry_id", id, "event_type", event.Type)
	return nil
}
