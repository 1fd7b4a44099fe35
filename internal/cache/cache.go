// Package cache keeps recent aggregation results per ticker.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// DefaultTTL is how long a result stays fresh
const DefaultTTL = 5 * time.Minute

// ResultCache maps a ticker to its latest aggregation result
type ResultCache interface {
	Get(ctx context.Context, ticker string) (*models.AggregationResult, bool)
	Put(ctx context.Context, ticker string, result *models.AggregationResult)
}

// Key normalizes a ticker into a cache key
func Key(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

type entry struct {
	Value     *models.AggregationResult `json:"value"`
	CreatedAt time.Time                 `json:"createdAt"`
}

func (e entry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}
