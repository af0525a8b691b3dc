package lock

import (
	"context"
	"errors"
)

var (
	ErrEmptyKey      = errors.New("lock_key_empty")
	ErrNotConfigured = errors.New("lock_client_not_configured")
)

// Unlock releases a held lock.
type Unlock func(ctx context.Context) error

// Locker serializes critical sections identified by key.
type Locker interface {
	// Lock blocks until the lock is held or ctx is done.
	Lock(ctx context.Context, key string) (Unlock, error)
}
