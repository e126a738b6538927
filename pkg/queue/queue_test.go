package queue

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

// newTestClient connects to TEST_REDIS_ADDR and skips the test when it is
// unset or unreachable.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisQueueKeepsOrder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	name := "test:queue:" + t.Name()
	require.NoError(t, client.Del(ctx, name).Err())

	q := NewRedisQueue(client, name)
	require.NoError(t, q.Publish(ctx, entity.LedgerEvent{ID: "1", Type: entity.LedgerEventCreated, EventID: 1}))
	require.NoError(t, q.Publish(ctx, entity.LedgerEvent{ID: "2", Type: entity.LedgerTicketPurchased, TicketID: 1}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := q.Pop(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "1", first.ID)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerTicketPurchased, second.Type)

	empty, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestDeadLetterQueue(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := "test:dlq:" + t.Name()
	require.NoError(t, client.Del(ctx, key).Err())

	dlq := NewDeadLetterQueue(client, key)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		dlq.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		event := entity.LedgerEvent{ID: string(rune('a' + i)), Type: entity.LedgerTicketRefunded}
		require.NoError(t, dlq.Park(ctx, event, errors.New("broker down")))
	}

	n, err := dlq.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	failed, err := dlq.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, failed, 2)
	assert.Equal(t, "c", failed[0].Event.ID)
	assert.Equal(t, "b", failed[1].Event.ID)
	assert.Equal(t, "broker down", failed[0].Error)
}
