package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// transferScript debits KEYS[1] and credits KEYS[2] in one server-side step.
// Returns 0 when the debit would go negative. A failed credit restores the
// debit and is returned as an error; nothing is changed in either case.
var transferScript = redis.NewScript(`
local left = redis.call('DECRBY', KEYS[1], ARGV[1])
if left < 0 then
	redis.call('INCRBY', KEYS[1], ARGV[1])
	return 0
end
local credited = redis.pcall('INCRBY', KEYS[2], ARGV[1])
if type(credited) == 'table' and credited.err then
	redis.call('INCRBY', KEYS[1], ARGV[1])
	return credited
end
return 1
`)

// RedisRail stores balances as integer keys under prefix.
type RedisRail struct {
	client *redis.Client
	prefix string
}

func NewRedisRail(client *redis.Client, prefix string) *RedisRail {
	return &RedisRail{client: client, prefix: prefix}
}

func (r *RedisRail) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" || from == to {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransfer, from, to)
	}

	// The script can run after ctx ends; wait for its real outcome.
	ok, err := transferScript.Run(context.WithoutCancel(ctx), r.client,
		[]string{r.key(from), r.key(to)},
		strconv.FormatUint(amount, 10),
	).Int()
	if err != nil {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, err)
	}
	if ok == 0 {
		return fmt.Errorf("%w: %s needs %d", ErrInsufficientFunds, from, amount)
	}
	return nil
}

func (r *RedisRail) Credit(ctx context.Context, id string, amount uint64) error {
	return r.client.IncrBy(ctx, r.key(id), int64(amount)).Err()
}

func (r *RedisRail) Balance(ctx context.Context, id string) (uint64, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (r *RedisRail) key(id string) string {
	return r.prefix + id
}
