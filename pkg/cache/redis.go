package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss is returned by Get when the key does not exist.
	ErrCacheMiss = errors.New("cache miss")
	// ErrLockTimeout is returned when a lock could not be acquired before the wait elapsed.
	ErrLockTimeout = errors.New("lock acquisition timed out")
	// ErrLockNotHeld is returned when releasing a lock owned by someone else or already expired.
	ErrLockNotHeld = errors.New("lock not held")
)

const (
	lockKeyPrefix = "lock:"
	lockRetryMin  = 10 * time.Millisecond
	lockRetryMax  = 200 * time.Millisecond
)

// unlockScript deletes the key only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client *redis.Client
	config *RedisConfig
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisCache(config *RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: rdb,
		config: config,
	}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// SetNX stores value as JSON only if key is absent.
func (r *RedisCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return r.client.SetNX(ctx, key, data, expiration).Result()
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Lock acquires an exclusive lock on key, retrying until wait elapses or ctx is done.
// The returned function releases the lock.
func (r *RedisCache) Lock(ctx context.Context, key string, ttl, wait time.Duration) (func(context.Context) error, error) {
	token, err := newLockToken()
	if err != nil {
		return nil, err
	}

	lockKey := lockKeyPrefix + key
	deadline := time.Now().Add(wait)
	backoff := lockRetryMin

	for {
		ok, err := r.SetNX(ctx, lockKey, token, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return r.unlock(ctx, lockKey, token)
			}, nil
		}

		if !time.Now().Add(backoff).Before(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > lockRetryMax {
			backoff = lockRetryMax
		}
	}
}

func (r *RedisCache) unlock(ctx context.Context, lockKey, token string) error {
	// SetNX stored the token JSON encoded.
	stored, err := json.Marshal(token)
	if err != nil {
		return err
	}
	deleted, err := unlockScript.Run(ctx, r.client, []string{lockKey}, string(stored)).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
