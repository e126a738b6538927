package clock

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Clock is the host height source. Heights never decrease.
type Clock interface {
	Height(ctx context.Context) (uint64, error)
}

// Producer is a clock that can be advanced, one block at a time or more.
type Producer interface {
	Clock
	Advance(ctx context.Context, blocks uint64) (uint64, error)
}

type ManualClock struct {
	mu     sync.Mutex
	height uint64
}

// NewManual returns an in-process clock starting at height.
func NewManual(height uint64) *ManualClock {
	return &ManualClock{height: height}
}

func (m *ManualClock) Height(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height, nil
}

func (m *ManualClock) Advance(_ context.Context, blocks uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += blocks
	return m.height, nil
}

// Set moves the clock to height. Moving backwards is rejected.
func (m *ManualClock) Set(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if height < m.height {
		return fmt.Errorf("height %d is behind current height %d", height, m.height)
	}
	m.height = height
	return nil
}

type RedisClock struct {
	client *redis.Client
	key    string
}

// NewRedis returns a clock reading the height from a Redis counter, shared
// by every process pointing at the same key.
func NewRedis(client *redis.Client, key string) *RedisClock {
	return &RedisClock{client: client, key: key}
}

func (r *RedisClock) Height(ctx context.Context) (uint64, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read height: %w", err)
	}
	h, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse height %q: %w", raw, err)
	}
	return h, nil
}

func (r *RedisClock) Advance(ctx context.Context, blocks uint64) (uint64, error) {
	h, err := r.client.IncrBy(ctx, r.key, int64(blocks)).Result()
	if err != nil {
		return 0, fmt.Errorf("advance height: %w", err)
	}
	return uint64(h), nil
}
