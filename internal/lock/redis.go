package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultLockTTL      = 30 * time.Second
	defaultPollInterval = 50 * time.Millisecond
)

// RedisLocker serializes callers across processes sharing a Redis instance.
type RedisLocker struct {
	client       *redis.Client
	script       *redis.Script
	prefix       string
	ttl          time.Duration
	pollInterval time.Duration
}

func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if client == nil {
		return nil
	}
	return &RedisLocker{
		client:       client,
		script:       redis.NewScript(lockReleaseScript),
		prefix:       prefix,
		ttl:          defaultLockTTL,
		pollInterval: defaultPollInterval,
	}
}

// TryLock attempts a single acquisition and returns the owner token when held.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, ErrNotConfigured
	}
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if l.ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release deletes the lock only if token still owns it.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil {
		return nil
	}
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{l.prefix + key}, token).Err()
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	if l == nil || l.client == nil {
		return nil, ErrNotConfigured
	}
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return l.Release(ctx, key, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
