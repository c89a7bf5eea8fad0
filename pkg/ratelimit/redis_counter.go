package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the window counter and arms its expiry in one
// atomic step, closing the read-then-write race between concurrent
// requests from the same client.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RedisCounter implements Counter on the shared Redis instance.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a counter over the given client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr implements Counter. The key expires at window end, so counters
// clean themselves up when the window rolls over.
func (c *RedisCounter) Incr(
	ctx context.Context,
	key string,
	window time.Duration,
) (int64, error) {
	res, err := incrScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	return res, nil
}

var _ Counter = (*RedisCounter)(nil)
