// Package queue keeps ledger events in Redis: a list consumers pop from and
// a dead-letter set for events that could not be delivered elsewhere.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

const metricsKey = "ticketing:queue:metrics"

// RedisQueue appends events to a Redis list. Consumers read with BRPOP, so
// the oldest event comes out first.
type RedisQueue struct {
	client *redis.Client
	name   string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, name: name}
}

func (r *RedisQueue) Publish(ctx context.Context, event entity.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := r.client.LPush(ctx, r.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push event: %w", err)
	}

	r.incrementMetric(ctx, "events_queued")
	return nil
}

// Pop removes the oldest event, or returns nil when the queue is empty.
func (r *RedisQueue) Pop(ctx context.Context) (*entity.LedgerEvent, error) {
	data, err := r.client.RPop(ctx, r.name).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop event: %w", err)
	}

	var event entity.LedgerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

func (r *RedisQueue) Len(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.name).Result()
}

// Close leaves the client open; its owner closes it.
func (r *RedisQueue) Close() error {
	return nil
}

func (r *RedisQueue) incrementMetric(ctx context.Context, metric string) {
	if err := r.client.HIncrBy(ctx, metricsKey, metric, 1).Err(); err != nil {
		logrus.Debugf("Failed to increment metric %s: %v", metric, err)
	}
}
