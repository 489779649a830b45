package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skillswap/pkg/logger"
)

// Locker provides mutual exclusion per key. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker returns an in-process keyed mutex. wait bounds how long Lock blocks; zero means
// only the context bounds it.
func NewLocalLocker(wait time.Duration) Locker {
	return &localLocker{
		locks: make(map[string]*keyLock),
		wait:  wait,
	}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.release(key, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, ctx.Err())
	}
}

func (l *localLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// DistributedLockClient is implemented by pkg/cache.RedisCache.
type DistributedLockClient interface {
	Lock(ctx context.Context, key string, ttl, wait time.Duration) (func(context.Context) error, error)
}

type redisLocker struct {
	client DistributedLockClient
	ttl    time.Duration
	wait   time.Duration
	logger *logger.Logger
}

// NewRedisLocker serializes across instances through a Redis lock.
func NewRedisLocker(client DistributedLockClient, ttl, wait time.Duration, logger *logger.Logger) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	unlock, err := l.client.Lock(ctx, key, l.ttl, l.wait)
	if err != nil {
		return nil, err
	}

	return func() {
		// Release even if the request context is already cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			l.logger.WithError(err).WithField("lock_key", key).Warn("Failed to release lock")
		}
	}, nil
}
