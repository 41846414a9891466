package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNil            = redis.Nil
	ErrNotInitialized = errors.New("redis: client not initialized")
	ErrLockNotHeld    = errors.New("redis: lock not acquired")
)

// IsNil reports a missing key
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// IsLockNotHeld reports that another holder owns the lock
func IsLockNotHeld(err error) bool {
	return errors.Is(err, ErrLockNotHeld)
}
