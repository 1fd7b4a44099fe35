package reddit

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// Search defaults
const (
	DefaultSectionLimit = 15
	DefaultMaxPosts     = 5
)

// DefaultSections are the general sections searched for every ticker
var DefaultSections = []string{"stocks", "wallstreetbets", "investing"}

// ThreadFetcher retrieves, filters, deduplicates and ranks discussion threads
type ThreadFetcher struct {
	client       *Client
	sections     []string
	sectionLimit int
	maxPosts     int
}

// NewThreadFetcher creates new fetcher. Zero values fall back to defaults.
func NewThreadFetcher(client *Client, sections []string, sectionLimit, maxPosts int) *ThreadFetcher {
	if len(sections) == 0 {
		sections = DefaultSections
	}
	if sectionLimit <= 0 {
		sectionLimit = DefaultSectionLimit
	}
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}

	return &ThreadFetcher{
		client:       client,
		sections:     sections,
		sectionLimit: sectionLimit,
		maxPosts:     maxPosts,
	}
}

// FetchThreads returns at most maxPosts relevant threads for ticker, most
// popular first. A failing section contributes nothing; only a cancelled
// context is reported as an error.
func (f *ThreadFetcher) FetchThreads(ctx context.Context, token, ticker string) ([]models.Post, error) {
	sections := f.sectionsFor(ticker)
	results := make([][]models.Post, len(sections))

	// Sections are fetched concurrently but concatenated in declared order,
	// which decides the surviving duplicate. Section failures are absorbed,
	// so the group only fails when the request itself is cancelled.
	var g errgroup.Group
	for i, section := range sections {
		g.Go(func() error {
			posts, err := f.searchSection(ctx, token, section, ticker)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("failed to fetch reddit section",
					zap.String("section", section),
					zap.String("ticker", ticker),
					zap.Error(err),
				)
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]models.Post, 0)
	for _, posts := range results {
		candidates = append(candidates, posts...)
	}

	threads := RankThreads(candidates, ticker, f.maxPosts)

	logger.Debug("fetched reddit threads",
		zap.String("ticker", ticker),
		zap.Int("candidates", len(candidates)),
		zap.Int("retained", len(threads)),
	)

	return threads, nil
}

// RankThreads applies the relevance filter, drops duplicate URLs (first seen
// wins), orders by popularity descending and keeps the top limit
func RankThreads(candidates []models.Post, ticker string, limit int) []models.Post {
	matcher := NewTickerMatcher(ticker)
	seen := make(map[string]struct{}, len(candidates))
	threads := make([]models.Post, 0, len(candidates))

	for i := range candidates {
		post := candidates[i]
		if !matcher.MatchPost(&post) {
			continue
		}
		if _, dup := seen[post.URL]; dup {
			continue
		}
		seen[post.URL] = struct{}{}
		threads = append(threads, post)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Score > threads[j].Score
	})

	if len(threads) > limit {
		threads = threads[:limit]
	}

	return threads
}

func (f *ThreadFetcher) sectionsFor(ticker string) []string {
	sections := make([]string, 0, len(f.sections)+1)
	sections = append(sections, f.sections...)
	return append(sections, ticker)
}

// searchSection runs the newest-first search restricted to one section
func (f *ThreadFetcher) searchSection(ctx context.Context, token, section, ticker string) ([]models.Post, error) {
	params := url.Values{}
	params.Set("q", ticker)
	params.Set("limit", strconv.Itoa(f.sectionLimit))
	params.Set("sort", "new")
	params.Set("restrict_sr", "on")

	var result listing
	path := fmt.Sprintf("/r/%s/search.json", url.PathEscape(section))
	if err := f.client.getJSON(ctx, token, path, params, &result); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(result.Data.Children))
	for _, child := range result.Data.Children {
		p := child.Data
		posts = append(posts, models.Post{
			ID:        p.ID,
			Title:     p.Title,
			Selftext:  p.Selftext,
			Score:     p.Score,
			URL:       webURL + p.Permalink,
			Permalink: p.Permalink,
			Subreddit: p.Subreddit,
		})
	}

	return posts, nil
}
