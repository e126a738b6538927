package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

// FailedEvent is an event whose delivery gave up, with the last error.
type FailedEvent struct {
	Event    entity.LedgerEvent `json:"event"`
	Error    string             `json:"error"`
	FailedAt time.Time          `json:"failed_at"`
}

// DeadLetterQueue stores failed events in a sorted set scored by failure
// time.
type DeadLetterQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewDeadLetterQueue(client *redis.Client, key string) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, key: key, now: time.Now}
}

func (d *DeadLetterQueue) Park(ctx context.Context, event entity.LedgerEvent, cause error) error {
	failed := FailedEvent{
		Event:    event,
		Error:    cause.Error(),
		FailedAt: d.now().UTC(),
	}

	data, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("failed to marshal failed event: %w", err)
	}

	score := float64(failed.FailedAt.UnixNano()) / 1e9
	if err := d.client.ZAdd(ctx, d.key, redis.Z{Score: score, Member: data}).Err(); err != nil {
		return fmt.Errorf("failed to park event: %w", err)
	}
	return nil
}

// List returns up to limit failed events, newest first.
func (d *DeadLetterQueue) List(ctx context.Context, limit int) ([]FailedEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	members, err := d.client.ZRevRange(ctx, d.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}

	out := make([]FailedEvent, 0, len(members))
	for _, m := range members {
		var failed FailedEvent
		if err := json.Unmarshal([]byte(m), &failed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dead letter: %w", err)
		}
		out = append(out, failed)
	}
	return out, nil
}

func (d *DeadLetterQueue) Len(ctx context.Context) (int64, error) {
	return d.client.ZCard(ctx, d.key).Result()
}
