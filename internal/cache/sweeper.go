package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
)

// Sweeper is a worker.Worker that drops expired MemoryCache entries
type Sweeper struct {
	cache *MemoryCache
}

// NewSweeper creates sweeper for the cache
func NewSweeper(c *MemoryCache) *Sweeper {
	return &Sweeper{cache: c}
}

// Name returns worker name
func (s *Sweeper) Name() string {
	return "cache_sweeper"
}

// Run removes expired entries once
func (s *Sweeper) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	removed := s.cache.Sweep()
	if removed > 0 {
		logger.Debug("expired cache entries removed",
			zap.Int("removed", removed),
			zap.Int("remaining", s.cache.Len()),
		)
	}
	return nil
}
