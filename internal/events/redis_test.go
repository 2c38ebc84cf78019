package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Deepesh2575/Online-Banking-System/internal/domain"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("redis endpoint: %v", err)
	}

	client, err := NewRedisClient(ctx, "redis://"+endpoint)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStreamPublisher_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	client := setupRedis(t)
	ctx := context.Background()

	pub := NewRedisStreamPublisher(client, "ledger.events.test", slog.Default())

	correlation := uuid.New()
	event := domain.LedgerEvent{
		Type:       domain.LedgerEventTransfer,
		AccountIDs: []int64{1, 2},
		Records: []domain.TransactionRecord{
			{ID: 10, AccountID: 1, Type: domain.TransactionTypeTransferOut, Amount: decimal.RequireFromString("150.00"), Description: "Transfer to account 2", CorrelationID: &correlation},
			{ID: 11, AccountID: 2, Type: domain.TransactionTypeTransferIn, Amount: decimal.RequireFromString("150.00"), Description: "Transfer from account 1", CorrelationID: &correlation},
		},
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, pub.Publish(ctx, event))

	entries, err := client.XRange(ctx, "ledger.events.test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, ok := entries[0].Values["event"].(string)
	require.True(t, ok)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, domain.LedgerEventTransfer, env.Type)

	var got domain.LedgerEvent
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	require.Len(t, got.Records, 2)
	assert.True(t, got.Records[0].Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, correlation, *got.Records[1].CorrelationID)
}

func TestNewRedisClient_BadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not-a-redis-url")
	require.Error(t, err)
}
