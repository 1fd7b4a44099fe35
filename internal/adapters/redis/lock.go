package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
)

// DefaultLockTTL bounds how long one instance may hold a ticker
const DefaultLockTTL = 30 * time.Second

// TickerLock marks one instance as the one aggregating a ticker
type TickerLock interface {
	// TryAcquire returns false with a nil error only when another instance
	// holds the ticker
	TryAcquire(ctx context.Context) (bool, error)

	// Release releases the lock
	Release(ctx context.Context) error
}

// LockFactory creates per-ticker locks
type LockFactory interface {
	CreateTickerLock(ticker string) TickerLock
}

// locker is the part of *redlock.RedLock used here
type locker interface {
	Lock(ctx context.Context, resource string, ttl time.Duration) (time.Duration, error)
	UnLock(ctx context.Context, resource string) error
}

// Pinger checks that redis answers. redlock reports a held lock and an
// unreachable server with the same error, so a ping tells them apart.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisLockFactory creates Redlock-based ticker locks
type RedisLockFactory struct {
	lockManager locker
	pinger      Pinger
	ttl         time.Duration
}

// NewRedisLockFactory creates new Redis lock factory
func NewRedisLockFactory(lockManager locker, pinger Pinger, ttl time.Duration) *RedisLockFactory {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLockFactory{
		lockManager: lockManager,
		pinger:      pinger,
		ttl:         ttl,
	}
}

// CreateTickerLock creates a lock for a ticker
func (f *RedisLockFactory) CreateTickerLock(ticker string) TickerLock {
	return &DistributedLock{
		lockManager: f.lockManager,
		pinger:      f.pinger,
		ticker:      ticker,
		lockName:    LockName(ticker),
		ttl:         f.ttl,
	}
}

// LockName returns the redis resource name for a ticker
func LockName(ticker string) string {
	return fmt.Sprintf("sentiment:lock:%s", ticker)
}

// DistributedLock wraps redlock-go for a single ticker. The TTL outlives a
// normal aggregation, so it is not renewed.
type DistributedLock struct {
	lockManager locker
	pinger      Pinger
	ticker      string
	lockName    string
	ttl         time.Duration
	locked      bool
}

// TryAcquire attempts to acquire the ticker lock using the Redlock algorithm.
// It returns (false, nil) only when another instance holds the lock; an
// unreachable redis or a cancelled context is an error.
func (dl *DistributedLock) TryAcquire(ctx context.Context) (bool, error) {
	if err := dl.ping(ctx); err != nil {
		return false, err
	}

	expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if errors.Is(err, context.Canceled) {
			return false, err
		}
		// redis may have gone away while locking
		if pingErr := dl.ping(ctx); pingErr != nil {
			return false, pingErr
		}

		logger.Debug("ticker lock held by another instance",
			zap.String("ticker", dl.ticker),
			zap.String("lock_name", dl.lockName),
		)
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock: invalid expiry %v", expiry)
	}

	dl.locked = true

	logger.Debug("ticker lock acquired",
		zap.String("ticker", dl.ticker),
		zap.Duration("expiry", expiry),
	)

	return true, nil
}

func (dl *DistributedLock) ping(ctx context.Context) error {
	if dl.pinger == nil {
		return nil
	}
	if err := dl.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("redis unavailable for lock %s: %w", dl.lockName, err)
	}
	return nil
}

// Release releases the lock
func (dl *DistributedLock) Release(ctx context.Context) error {
	if !dl.locked {
		return nil
	}

	if err := dl.lockManager.UnLock(ctx, dl.lockName); err != nil {
		// may have already expired
		logger.Warn("failed to release ticker lock",
			zap.String("ticker", dl.ticker),
			zap.Error(err),
		)
	}

	dl.locked = false
	return nil
}
