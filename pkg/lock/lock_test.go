package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLocker(t *testing.T) {
	release, err := NoopLocker{}.Acquire(context.Background(), "policy:any")
	require.NoError(t, err)
	release()
	release()
}

func redisClient(t *testing.T) *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return client
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	first := NewRedisLocker(client, 5*time.Second, 0)
	release, err := first.Acquire(ctx, key)
	require.NoError(t, err)

	second := NewRedisLocker(client, 5*time.Second, 150*time.Millisecond)
	_, err = second.Acquire(ctx, key)
	assert.ErrorIs(t, err, ErrLocked)

	release()
	releaseAgain, err := second.Acquire(ctx, key)
	require.NoError(t, err)
	releaseAgain()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()
	locker := NewRedisLocker(client, 5*time.Second, 0)

	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, "lock:"+key, "someone-else", time.Minute).Err())

	release()
	val, err := client.Get(ctx, "lock:"+key).Result()
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
	client.Del(ctx, "lock:"+key)
}
