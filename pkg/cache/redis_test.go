package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type aggregate struct {
		Rating float64 `json:"rating"`
		Total  int     `json:"total"`
	}

	require.NoError(t, c.Set(ctx, "user_rating:1", aggregate{Rating: 4.5, Total: 2}, time.Minute))

	var got aggregate
	require.NoError(t, c.Get(ctx, "user_rating:1", &got))
	assert.Equal(t, aggregate{Rating: 4.5, Total: 2}, got)

	require.NoError(t, c.Delete(ctx, "user_rating:1"))
	assert.ErrorIs(t, c.Get(ctx, "user_rating:1", &got), ErrCacheMiss)
}

func TestRedisCache_SetExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	var got string
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestRedisCache_LockIsExclusive(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "rating:user:a", time.Minute, time.Second)
	require.NoError(t, err)

	_, err = c.Lock(ctx, "rating:user:a", time.Minute, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, unlock(ctx))

	unlock, err = c.Lock(ctx, "rating:user:a", time.Minute, time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestRedisCache_UnlockAfterExpiryDoesNotReleaseNewOwner(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	staleUnlock, err := c.Lock(ctx, "k", time.Second, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	unlock, err := c.Lock(ctx, "k", time.Minute, time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, staleUnlock(ctx), ErrLockNotHeld)
	assert.True(t, mr.Exists(lockKeyPrefix+"k"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(lockKeyPrefix+"k"))
}

func TestRedisCache_LockSerializesCriticalSection(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := c.Lock(ctx, "shared", time.Minute, 5*time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, unlock(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestRedisCache_SetNX(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "k", map[string]int{"v": 1}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "k", map[string]int{"v": 2}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["v"])
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestRedisCache_LockStoresTokenWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "swap:pair:a:b", 30*time.Second, time.Second)
	require.NoError(t, err)

	var token string
	require.NoError(t, c.Get(ctx, lockKeyPrefix+"swap:pair:a:b", &token))
	assert.Len(t, token, 32)
	assert.Equal(t, 30*time.Second, mr.TTL(lockKeyPrefix+"swap:pair:a:b"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists(lockKeyPrefix+"swap:pair:a:b"))
}
