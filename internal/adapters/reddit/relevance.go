package reddit

import (
	"regexp"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// TickerMatcher reports whether text mentions a ticker as a whole token,
// optionally prefixed with "$", case-insensitively
type TickerMatcher struct {
	pattern *regexp.Regexp
}

// NewTickerMatcher compiles a matcher for ticker
func NewTickerMatcher(ticker string) *TickerMatcher {
	return &TickerMatcher{
		pattern: regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])\$?` + regexp.QuoteMeta(ticker) + `(?:[^A-Za-z0-9]|$)`),
	}
}

// Match checks a single text
func (m *TickerMatcher) Match(text string) bool {
	return m.pattern.MatchString(text)
}

// MatchPost checks title and body
func (m *TickerMatcher) MatchPost(post *models.Post) bool {
	return m.Match(post.Title) || m.Match(post.Selftext)
}
