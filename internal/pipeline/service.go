// Package pipeline runs the per-ticker sentiment aggregation.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/internal/cache"
	"github.com/selivandex/ticker-sentiment/internal/sentiment"
	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// TokenSource provides a forum access token
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ThreadSource finds ranked threads mentioning a ticker
type ThreadSource interface {
	FetchThreads(ctx context.Context, token, ticker string) ([]models.Post, error)
}

// CommentSource returns top reply bodies for a thread
type CommentSource interface {
	FetchTopComments(ctx context.Context, token string, post *models.Post) []string
}

// Service aggregates forum sentiment for a ticker
type Service struct {
	tokens     TokenSource
	threads    ThreadSource
	comments   CommentSource
	aggregator *sentiment.ThreadAggregator
	cache      cache.ResultCache
	coalescer  Coalescer
}

// NewService creates the aggregation pipeline. A nil coalescer means
// in-process coalescing only.
func NewService(
	tokens TokenSource,
	threads ThreadSource,
	comments CommentSource,
	aggregator *sentiment.ThreadAggregator,
	resultCache cache.ResultCache,
	coalescer Coalescer,
) *Service {
	if coalescer == nil {
		coalescer = NewLocalCoalescer()
	}
	return &Service{
		tokens:     tokens,
		threads:    threads,
		comments:   comments,
		aggregator: aggregator,
		cache:      resultCache,
		coalescer:  coalescer,
	}
}

// Aggregate returns the sentiment result for a ticker, from cache when fresh.
// Only ErrInvalidTicker, AuthError and context errors are returned; every
// other failure degrades to neutral values.
func (s *Service) Aggregate(ctx context.Context, rawTicker string) (*models.AggregationResult, error) {
	ticker, err := NormalizeTicker(rawTicker)
	if err != nil {
		return nil, err
	}

	if result, ok := s.cache.Get(ctx, ticker); ok {
		logger.Debug("sentiment cache hit", zap.String("ticker", ticker))
		return result, nil
	}

	return s.coalescer.Do(ctx, ticker, func(ctx context.Context) (*models.AggregationResult, error) {
		// a run that just finished may have filled the cache
		if result, ok := s.cache.Get(ctx, ticker); ok {
			return result, nil
		}

		result, err := s.run(ctx, ticker)
		if err != nil {
			return nil, err
		}

		s.cache.Put(ctx, ticker, result)
		return result, nil
	})
}

func (s *Service) run(ctx context.Context, ticker string) (*models.AggregationResult, error) {
	start := time.Now()
	log := logger.ForTicker(ticker)

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		log.Error("reddit authentication failed", zap.Error(err))
		return nil, err
	}

	posts, err := s.threads.FetchThreads(ctx, token, ticker)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	scores := make([]int, 0, len(posts))
	for i := range posts {
		comments := s.comments.FetchTopComments(ctx, token, &posts[i])
		scores = append(scores, s.aggregator.ScoreThread(ctx, &posts[i], comments))
	}

	result := &models.AggregationResult{
		SentimentScore: sentiment.CombineTickerScore(scores),
		Posts:          posts,
	}

	log.Info("sentiment aggregated",
		zap.Int("sentiment_score", result.SentimentScore),
		zap.Int("posts", len(posts)),
		zap.Duration("took", time.Since(start)),
	)

	return result, nil
}
