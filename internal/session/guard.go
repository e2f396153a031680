package session

import (
	"context"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/redisclient"
)

const guardPrefix = "inscricao:busy:"

// RedisGuard is a busy flag shared by every server instance. The TTL bounds
// how long a crashed submission can keep the flag.
type RedisGuard struct {
	redis *redisclient.Client
	ttl   time.Duration
}

// NewRedisGuard creates a guard whose flags expire after ttl
func NewRedisGuard(client *redisclient.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{redis: client, ttl: ttl}
}

// TryAcquire implements flow.Guard
func (g *RedisGuard) TryAcquire(ctx context.Context, key string) (bool, error) {
	return g.redis.SetNX(ctx, guardPrefix+key, "1", g.ttl).Result()
}

// Release implements flow.Guard
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.redis.Del(ctx, guardPrefix+key).Err()
}
