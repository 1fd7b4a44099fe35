package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/ticker-sentiment/internal/cache"
	"github.com/selivandex/ticker-sentiment/internal/sentiment"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

type fakeTokens struct {
	err   error
	calls int32
}

func (f *fakeTokens) AccessToken(context.Context) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return "", f.err
	}
	return "token", nil
}

type fakeThreads struct {
	posts   []models.Post
	calls   int32
	started chan struct{}
	release chan struct{}
}

func (f *fakeThreads) FetchThreads(context.Context, string, string) ([]models.Post, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
		<-f.release
	}
	out := make([]models.Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

type fakeComments map[string][]string

func (f fakeComments) FetchTopComments(_ context.Context, _ string, post *models.Post) []string {
	return f[post.Permalink]
}

// fixedClassifier answers every text with the same candidates or error
type fixedClassifier struct {
	candidates []models.LabelScore
	err        error
}

func (c fixedClassifier) Name() string { return "fixed" }

func (c fixedClassifier) Classify(context.Context, string) ([]models.LabelScore, error) {
	return c.candidates, c.err
}

func newTestService(tokens TokenSource, threads ThreadSource, comments CommentSource, classifier sentiment.Classifier) (*Service, *cache.MemoryCache) {
	resultCache := cache.NewMemoryCache(time.Minute)
	aggregator := sentiment.NewThreadAggregator(sentiment.NewScorer(classifier), nil)
	return NewService(tokens, threads, comments, aggregator, resultCache, nil), resultCache
}

func TestAggregate_NoThreadsIsNeutral(t *testing.T) {
	svc, _ := newTestService(&fakeTokens{}, &fakeThreads{}, fakeComments{}, fixedClassifier{})

	res, err := svc.Aggregate(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Equal(t, 50, res.SentimentScore)
	assert.NotNil(t, res.Posts)
	assert.Empty(t, res.Posts)
}

func TestAggregate_PositivePostWithoutComments(t *testing.T) {
	threads := &fakeThreads{posts: []models.Post{
		{Title: "AAPL smashed earnings expectations", URL: "https://reddit.com/a", Permalink: "/r/stocks/a/"},
	}}
	classifier := fixedClassifier{candidates: []models.LabelScore{
		{Label: "positive", Score: 0.9},
		{Label: "neutral", Score: 0.1},
	}}
	svc, _ := newTestService(&fakeTokens{}, threads, fakeComments{}, classifier)

	res, err := svc.Aggregate(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	// round(0.6*100 + 0.4*50)
	assert.Equal(t, 80, res.Posts[0].ThreadSentiment)
	assert.Equal(t, 80, res.SentimentScore)
}

func TestAggregate_ClassifierFailureDegradesToNeutral(t *testing.T) {
	threads := &fakeThreads{posts: []models.Post{
		{Title: "TSLA delivery numbers are out", URL: "https://reddit.com/t", Permalink: "/r/stocks/t/"},
	}}
	comments := fakeComments{"/r/stocks/t/": {"this is going to be a long reply", "another reply for the thread"}}
	classifier := fixedClassifier{err: errors.New("connection reset")}
	svc, _ := newTestService(&fakeTokens{}, threads, comments, classifier)

	res, err := svc.Aggregate(context.Background(), "TSLA")
	require.NoError(t, err)
	assert.Equal(t, 50, res.SentimentScore)
	assert.Equal(t, 50, res.Posts[0].ThreadSentiment)
}

func TestAggregate_AuthFailureStopsPipeline(t *testing.T) {
	tokens := &fakeTokens{err: &models.AuthError{Err: errors.New("no access_token in response")}}
	threads := &fakeThreads{}
	svc, resultCache := newTestService(tokens, threads, fakeComments{}, fixedClassifier{})

	res, err := svc.Aggregate(context.Background(), "AAPL")
	assert.Nil(t, res)

	var authErr *models.AuthError
	assert.ErrorAs(t, err, &authErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&threads.calls))

	_, ok := resultCache.Get(context.Background(), "AAPL")
	assert.False(t, ok)
}

func TestAggregate_InvalidTicker(t *testing.T) {
	tokens := &fakeTokens{}
	svc, _ := newTestService(tokens, &fakeThreads{}, fakeComments{}, fixedClassifier{})

	_, err := svc.Aggregate(context.Background(), "not a ticker")
	assert.ErrorIs(t, err, models.ErrInvalidTicker)
	assert.Equal(t, int32(0), atomic.LoadInt32(&tokens.calls))
}

func TestAggregate_CacheHit(t *testing.T) {
	tokens := &fakeTokens{}
	threads := &fakeThreads{}
	svc, resultCache := newTestService(tokens, threads, fakeComments{}, fixedClassifier{})

	cached := &models.AggregationResult{SentimentScore: 77, Posts: []models.Post{}}
	resultCache.Put(context.Background(), "GME", cached)

	res, err := svc.Aggregate(context.Background(), "$gme")
	require.NoError(t, err)
	assert.Same(t, cached, res)
	assert.Equal(t, int32(0), atomic.LoadInt32(&tokens.calls))
}

func TestAggregate_StoresResult(t *testing.T) {
	threads := &fakeThreads{}
	svc, resultCache := newTestService(&fakeTokens{}, threads, fakeComments{}, fixedClassifier{})

	first, err := svc.Aggregate(context.Background(), "AMD")
	require.NoError(t, err)

	cached, ok := resultCache.Get(context.Background(), "AMD")
	require.True(t, ok)
	assert.Same(t, first, cached)

	_, err = svc.Aggregate(context.Background(), "amd")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&threads.calls))
}

func TestAggregate_ConcurrentRequestsShareRun(t *testing.T) {
	threads := &fakeThreads{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc, _ := newTestService(&fakeTokens{}, threads, fakeComments{}, fixedClassifier{})

	var wg sync.WaitGroup
	results := make([]*models.AggregationResult, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Aggregate(context.Background(), "NVDA")
	}()
	<-threads.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.Aggregate(context.Background(), "NVDA")
	}()

	close(threads.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&threads.calls))
	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])
}
