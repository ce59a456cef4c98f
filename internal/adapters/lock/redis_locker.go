package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/lifeline/donor-matching-service/internal/config"
	"github.com/AchilleasB/lifeline/donor-matching-service/internal/core/ports"
)

const (
	keyPrefix      = "lock:"
	retryInterval  = 50 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements ports.RecordLocker with SET NX PX. The TTL bounds
// how long a crashed holder can block a record.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

var _ ports.RecordLocker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	logger = logger.Named("redis_lock")
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		cb:     config.NewCircuitBreaker("Redis-Lock", logger),
		logger: logger,
	}
}

// Lock retries until the key is free or ctx ends. Without a deadline on ctx
// the wait is capped at the lock TTL.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.ttl)
		defer cancel()
	}

	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	// lastErr is the most recent failure that was not the wait itself
	// running out while the key was held by someone else.
	var lastErr error
	contended := false
	for {
		acquired, err := l.cb.Execute(func() (interface{}, error) {
			return l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		})
		switch {
		case err == nil && acquired.(bool):
			return l.releaser(redisKey, token), nil
		case err == nil:
			contended = true
			lastErr = nil
		case ctx.Err() == nil:
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		case !contended || !errors.Is(err, ctx.Err()):
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return nil, fmt.Errorf("acquire %s: %w", key, lastErr)
			}
			return nil, fmt.Errorf("%s: %w", key, ErrLockTimeout)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn("lock release failed, waiting for expiry",
					zap.String("key", redisKey),
					zap.Error(err),
				)
			}
		})
	}
}
