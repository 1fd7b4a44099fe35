package sentiment

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// Thread score weights
const (
	postWeight    = 0.6
	commentWeight = 0.4
)

// Limiter gates classifier calls. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// TextScorer scores a single text on the 0-100 scale
type TextScorer interface {
	Score(ctx context.Context, text string) int
}

// ThreadAggregator combines post and reply sentiment into thread and ticker scores
type ThreadAggregator struct {
	scorer  TextScorer
	limiter Limiter
}

// NewThreadAggregator creates new aggregator. limiter may be nil.
func NewThreadAggregator(scorer TextScorer, limiter Limiter) *ThreadAggregator {
	return &ThreadAggregator{
		scorer:  scorer,
		limiter: limiter,
	}
}

// ScoreThread scores post text and its replies, stores the result in
// post.ThreadSentiment and returns it
func (a *ThreadAggregator) ScoreThread(ctx context.Context, post *models.Post, comments []string) int {
	postScore := a.scorer.Score(ctx, post.Text())

	commentScores := make([]int, 0, len(comments))
	for _, comment := range comments {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				logger.Warn("comment scoring interrupted",
					zap.String("permalink", post.Permalink),
					zap.Int("scored", len(commentScores)),
					zap.Error(err),
				)
				break
			}
		}
		commentScores = append(commentScores, a.scorer.Score(ctx, comment))
	}

	post.ThreadSentiment = ThreadScore(postScore, commentScores)

	logger.Debug("thread scored",
		zap.String("url", post.URL),
		zap.Int("post_sentiment", postScore),
		zap.Int("comments", len(commentScores)),
		zap.Int("thread_sentiment", post.ThreadSentiment),
	)

	return post.ThreadSentiment
}

// ThreadScore weights post sentiment against the mean reply sentiment.
// No replies counts as a neutral reply mean.
func ThreadScore(postScore int, commentScores []int) int {
	commentMean := float64(models.SentimentNeutral)
	if len(commentScores) > 0 {
		commentMean = mean(commentScores)
	}

	return models.ClampSentiment(roundHalfUp(postWeight*float64(postScore) + commentWeight*commentMean))
}

// CombineTickerScore averages thread scores; no threads is neutral
func CombineTickerScore(threadScores []int) int {
	if len(threadScores) == 0 {
		return models.SentimentNeutral
	}

	return models.ClampSentiment(roundHalfUp(mean(threadScores)))
}

func mean(values []int) float64 {
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
