package kv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// TokensLock guards the token registry across processes: the duplicate
// login check and token creation must not interleave.
const TokensLock = "akatsuki:locks:tokens"

// Locker runs functions under a Redis-backed distributed mutex.
type Locker struct {
	rs *redsync.Redsync
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rs: redsync.New(goredis.NewPool(rdb))}
}

// WithLock acquires the named lock, runs fn, and releases the lock.
// Acquisition retries with backoff until the redsync default attempts
// run out.
func (l *Locker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(name)
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("acquiring lock %s: %w", name, err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(ctx); !ok || err != nil {
			slog.Warn("failed to release lock", "lock", name, "error", err)
		}
	}()

	return fn(ctx)
}
