package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestMemoryCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_GetMiss(t *testing.T) {
	c, _ := newTestMemoryCache(time.Minute)

	res, ok := c.Get(context.Background(), "AAPL")
	assert.False(t, ok)
	assert.Nil(t, res)
}

func TestMemoryCache_PutThenGet(t *testing.T) {
	c, clock := newTestMemoryCache(5 * time.Minute)
	ctx := context.Background()

	stored := &models.AggregationResult{SentimentScore: 72, Posts: []models.Post{}}
	c.Put(ctx, "aapl", stored)

	clock.t = clock.t.Add(299 * time.Second)
	res, ok := c.Get(ctx, "AAPL")
	require.True(t, ok)
	assert.Same(t, stored, res)
}

func TestMemoryCache_Expires(t *testing.T) {
	c, clock := newTestMemoryCache(5 * time.Minute)
	ctx := context.Background()

	c.Put(ctx, "TSLA", &models.AggregationResult{SentimentScore: 10})

	clock.t = clock.t.Add(301 * time.Second)
	_, ok := c.Get(ctx, "TSLA")
	assert.False(t, ok)

	// lazy: still stored until swept
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_PutReplaces(t *testing.T) {
	c, clock := newTestMemoryCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, "GME", &models.AggregationResult{SentimentScore: 10})
	clock.t = clock.t.Add(50 * time.Second)
	c.Put(ctx, "GME", &models.AggregationResult{SentimentScore: 90})

	clock.t = clock.t.Add(50 * time.Second)
	res, ok := c.Get(ctx, "GME")
	require.True(t, ok)
	assert.Equal(t, 90, res.SentimentScore)
}

func TestMemoryCache_SweepKeepsFresh(t *testing.T) {
	c, clock := newTestMemoryCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, "OLD", &models.AggregationResult{})
	clock.t = clock.t.Add(2 * time.Minute)
	c.Put(ctx, "NEW", &models.AggregationResult{})

	assert.Equal(t, 1, c.Sweep())
	_, ok := c.Get(ctx, "NEW")
	assert.True(t, ok)
}
