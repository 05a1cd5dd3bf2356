// internal/common/lock/lock_test.go
package lock

import (
	"context"
	"testing"
	"time"

	"invoice-recovery/internal/common/config"
	"invoice-recovery/internal/common/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*database.RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestRunLock_AcquireAndRelease(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	l := New(client, "followup:run-lock", time.Minute)

	acquired, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.True(t, mr.Exists("followup:run-lock"))

	require.NoError(t, l.Release(ctx))
	assert.False(t, mr.Exists("followup:run-lock"))
}

func TestRunLock_SecondHolderBlocked(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()

	first := New(client, "followup:run-lock", time.Minute)
	second := New(client, "followup:run-lock", time.Minute)

	acquired, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, acquired, "a held lock must not be acquirable")

	// Releasing a lock you do not hold must not free it.
	require.NoError(t, second.Release(ctx))
	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, acquired)

	// The holder can release and the lock becomes available again.
	require.NoError(t, first.Release(ctx))
	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestRunLock_ReacquireAfterExpiry(t *testing.T) {
	client, mr := newTestRedis(t)
	ctx := context.Background()

	first := New(client, "followup:run-lock", time.Second)

	acquired, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	second := New(client, "followup:run-lock", time.Minute)
	acquired, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, acquired, "an expired lock is free for the next run")

	// The stale holder's release must not steal the new holder's lock.
	require.NoError(t, first.Release(ctx))
	assert.True(t, mr.Exists("followup:run-lock"))
}
