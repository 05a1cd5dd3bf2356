// internal/common/lock/lock.go
package lock

import (
	"context"
	"time"

	"invoice-recovery/internal/common/database"

	"github.com/google/uuid"
)

// RunLock is a redis-backed single-flight lock. It keeps overlapping cron
// invocations from double-processing the same invoices.
type RunLock struct {
	redis *database.RedisClient
	key   string
	ttl   time.Duration
	token string
}

func New(redis *database.RedisClient, key string, ttl time.Duration) *RunLock {
	return &RunLock{
		redis: redis,
		key:   key,
		ttl:   ttl,
		token: uuid.New().String(),
	}
}

// Acquire attempts to take the lock. Returns false when another run holds it.
func (l *RunLock) Acquire(ctx context.Context) (bool, error) {
	return l.redis.SetNX(ctx, l.key, l.token, l.ttl)
}

// Release frees the lock only if this instance still holds it.
func (l *RunLock) Release(ctx context.Context) error {
	val, err := l.redis.Get(ctx, l.key)
	if err != nil {
		return nil // expired or never held; nothing to release
	}
	if val != l.token {
		return nil // taken over by a newer run after TTL expiry
	}
	return l.redis.Del(ctx, l.key)
}
