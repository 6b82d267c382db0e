package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("availability edit lock not acquired")
)

// Locker serializes availability edits per resource, so two staff
// members changing the same clinic or room hours at the same time
// cannot interleave partial writes.
type Locker interface {
	WithEditLock(ctx context.Context, resource string, fn func(ctx context.Context) error) error
}

type redisEditLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisEditLocker creates a locker backed by a per-resource Redis key.
func NewRedisEditLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisEditLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisEditLocker) WithEditLock(ctx context.Context, resource string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:availability:%s", resource)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire edit lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// Unlock only when the key still holds our token, so an expired lock
// reclaimed by another editor is never released from here.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisEditLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release edit lock: %w", err)
	}
	return nil
}
