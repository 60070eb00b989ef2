package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/knitout/internal/adapters/redis"
	"github.com/aretw0/knitout/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunLockerContract(t, redis.NewLocker(client, "test:"))
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "digest", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:digest"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:digest"), "Lock key should be removed after unlock")
}

func TestRedisLocker_ExpiredLockIsNotStolenBack(t *testing.T) {
	mr, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlockFirst, err := first.Lock(ctx, "digest", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	unlockSecond, err := second.Lock(ctx, "digest", 5*time.Second)
	require.NoError(t, err)

	// the first holder's late release must not drop the second holder's lock
	require.NoError(t, unlockFirst(ctx))
	assert.True(t, mr.Exists("test:lock:digest"))
	require.NoError(t, unlockSecond(ctx))
	assert.False(t, mr.Exists("test:lock:digest"))
}
