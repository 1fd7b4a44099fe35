package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/selivandex/ticker-sentiment/pkg/models"
	"github.com/selivandex/ticker-sentiment/pkg/worker"
)

var _ worker.Worker = (*Sweeper)(nil)

func TestSweeper_Run(t *testing.T) {
	c, clock := newTestMemoryCache(time.Minute)
	c.Put(context.Background(), "AAPL", &models.AggregationResult{})
	clock.t = clock.t.Add(2 * time.Minute)

	s := NewSweeper(c)
	assert.Equal(t, "cache_sweeper", s.Name())
	assert.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 0, c.Len())
}

func TestSweeper_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewSweeper(NewMemoryCache(time.Minute)).Run(ctx), context.Canceled)
}
