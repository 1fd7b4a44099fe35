package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	redisAdapter "github.com/selivandex/ticker-sentiment/internal/adapters/redis"
	"github.com/selivandex/ticker-sentiment/internal/cache"
	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// RunFunc computes a fresh aggregation
type RunFunc func(ctx context.Context) (*models.AggregationResult, error)

// Coalescer lets concurrent requests for one ticker share a single run
type Coalescer interface {
	Do(ctx context.Context, ticker string, fn RunFunc) (*models.AggregationResult, error)
}

// LocalCoalescer shares runs between goroutines of this process
type LocalCoalescer struct {
	group singleflight.Group
}

// NewLocalCoalescer creates in-process coalescer
func NewLocalCoalescer() *LocalCoalescer {
	return &LocalCoalescer{}
}

// Do runs fn once per ticker at a time. The run is detached from the caller's
// cancellation since other callers may be waiting on it; a cancelled caller
// stops waiting and gets ctx.Err().
func (c *LocalCoalescer) Do(ctx context.Context, ticker string, fn RunFunc) (*models.AggregationResult, error) {
	ch := c.group.DoChan(ticker, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("aggregation shared with concurrent request", zap.String("ticker", ticker))
		}
		return res.Val.(*models.AggregationResult), nil
	}
}

// DefaultPollInterval is how often a waiting replica checks the shared cache
const DefaultPollInterval = 500 * time.Millisecond

// DistributedCoalescer extends LocalCoalescer across replicas. The replica
// holding the ticker lock computes; others poll the shared cache for up to
// wait and compute themselves if nothing shows up.
type DistributedCoalescer struct {
	local *LocalCoalescer
	locks redisAdapter.LockFactory
	cache cache.ResultCache
	wait  time.Duration
	poll  time.Duration
}

// NewDistributedCoalescer creates coalescer backed by per-ticker locks and a shared cache
func NewDistributedCoalescer(locks redisAdapter.LockFactory, shared cache.ResultCache, wait time.Duration) *DistributedCoalescer {
	return &DistributedCoalescer{
		local: NewLocalCoalescer(),
		locks: locks,
		cache: shared,
		wait:  wait,
		poll:  DefaultPollInterval,
	}
}

// Do runs fn under the ticker lock, or waits for the lock holder's result
func (c *DistributedCoalescer) Do(ctx context.Context, ticker string, fn RunFunc) (*models.AggregationResult, error) {
	return c.local.Do(ctx, ticker, func(ctx context.Context) (*models.AggregationResult, error) {
		lock := c.locks.CreateTickerLock(ticker)

		acquired, err := lock.TryAcquire(ctx)
		if err != nil {
			logger.Warn("ticker lock failed, computing without it",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
			return fn(ctx)
		}

		if acquired {
			defer func() { _ = lock.Release(ctx) }()
			return fn(ctx)
		}

		if result, ok := c.waitForPeer(ctx, ticker); ok {
			return result, nil
		}

		logger.Warn("peer aggregation did not finish in time, computing locally",
			zap.String("ticker", ticker),
			zap.Duration("waited", c.wait),
		)
		return fn(ctx)
	})
}

func (c *DistributedCoalescer) waitForPeer(ctx context.Context, ticker string) (*models.AggregationResult, bool) {
	deadline := time.NewTimer(c.wait)
	defer deadline.Stop()

	poll := time.NewTicker(c.poll)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-poll.C:
			if result, ok := c.cache.Get(ctx, ticker); ok {
				return result, true
			}
		}
	}
}
