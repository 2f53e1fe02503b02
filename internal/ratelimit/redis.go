package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisGuard keeps reservations in Redis so they hold across instances.
type RedisGuard struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	return &RedisGuard{
		client: client,
		prefix: "eventportal:askadam:",
		window: window,
	}
}

func (g *RedisGuard) Reserve(ctx context.Context, key string) (Reservation, error) {
	r := Reservation{Key: g.prefix + key, Token: newToken()}

	ok, err := g.client.SetNX(ctx, r.Key, r.Token, g.window).Result()
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to reserve %s: %w", key, err)
	}
	if ok {
		r.OK = true
		return r, nil
	}

	ttl, err := g.client.PTTL(ctx, r.Key).Result()
	if err != nil || ttl < 0 {
		ttl = g.window
	}
	return Reservation{Key: r.Key, RetryAfter: ttl}, nil
}

func (g *RedisGuard) Release(ctx context.Context, r Reservation) error {
	if !r.OK {
		return nil
	}
	if err := releaseScript.Run(ctx, g.client, []string{r.Key}, r.Token).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", r.Key, err)
	}
	return nil
}
