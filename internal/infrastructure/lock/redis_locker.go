// Package lock provides short-lived distributed locks used to serialize
// document number issuance across instances.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var (
	// ErrEmptyKey is returned for an empty lock key
	ErrEmptyKey = errors.New("lock key is empty")
	// ErrInvalidTTL is returned for a non-positive ttl
	ErrInvalidTTL = errors.New("lock ttl must be positive")
)

// RedisLocker implements a single-instance Redis lock (SET NX PX + token-checked release)
type RedisLocker struct {
	client    redis.UniversalClient
	script    *redis.Script
	keyPrefix string
}

// NewRedisLocker creates a locker over client. keyPrefix namespaces every key.
func NewRedisLocker(client redis.UniversalClient, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "ledger:lock:"
	}
	return &RedisLocker{
		client:    client,
		script:    redis.NewScript(releaseScript),
		keyPrefix: keyPrefix,
	}
}

// TryLock attempts to take key for ttl. It returns the release token and
// whether the lock was acquired; it never blocks waiting for a holder.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release frees key if token still owns it. An expired or stolen lock is left alone.
func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err()
}

// NopLocker always grants the lock. Used when row locking alone is enough.
type NopLocker struct{}

// TryLock implements the locker contract
func (NopLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}
	return "nop", true, nil
}

// Release implements the locker contract
func (NopLocker) Release(context.Context, string, string) error {
	return nil
}
