package payment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRail connects to TEST_REDIS_ADDR under a fresh key prefix and skips
// the test when it is unset or unreachable.
func newTestRail(t *testing.T) (*RedisRail, *redis.Client) {
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

	return NewRedisRail(client, "test:rail:"+uuid.NewString()+":"), client
}

func TestRedisRailTransfer(t *testing.T) {
	rail, _ := newTestRail(t)
	ctx := context.Background()
	require.NoError(t, rail.Credit(ctx, "alice", 100))

	require.NoError(t, rail.Transfer(ctx, "alice", "bob", 40))
	require.ErrorIs(t, rail.Transfer(ctx, "alice", "bob", 61), ErrInsufficientFunds)

	alice, err := rail.Balance(ctx, "alice")
	require.NoError(t, err)
	bob, err := rail.Balance(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(60), alice)
	assert.Equal(t, uint64(40), bob)
}

func TestRedisRailFailedCreditRestoresDebit(t *testing.T) {
	rail, client := newTestRail(t)
	ctx := context.Background()
	require.NoError(t, rail.Credit(ctx, "alice", 100))
	require.NoError(t, client.Set(ctx, rail.key("bob"), "not-a-number", 0).Err())

	require.Error(t, rail.Transfer(ctx, "alice", "bob", 40))

	alice, err := rail.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), alice)
}

func TestRedisRailTransferIgnoresCancellation(t *testing.T) {
	rail, _ := newTestRail(t)
	require.NoError(t, rail.Credit(context.Background(), "alice", 100))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rail.Transfer(ctx, "alice", "bob", 30))

	bob, err := rail.Balance(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(30), bob)
}
