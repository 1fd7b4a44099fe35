package reddit

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// DefaultCommentLimit is the number of top replies requested per thread
const DefaultCommentLimit = 10

const commentKind = "t1"

// CommentFetcher retrieves the top-level replies of a thread
type CommentFetcher struct {
	client *Client
	limit  int
}

// NewCommentFetcher creates new comment fetcher
func NewCommentFetcher(client *Client, limit int) *CommentFetcher {
	if limit < 0 {
		limit = DefaultCommentLimit
	}
	return &CommentFetcher{client: client, limit: limit}
}

// FetchTopComments returns up to limit non-empty reply bodies, top ranked
// first. Failures yield an empty slice: replies only refine the score.
func (f *CommentFetcher) FetchTopComments(ctx context.Context, token string, post *models.Post) []string {
	if f.limit == 0 || post.Permalink == "" {
		return []string{}
	}

	params := url.Values{}
	params.Set("sort", "top")
	params.Set("limit", strconv.Itoa(f.limit))

	// The comment tree endpoint answers [post listing, reply listing]
	var tree []listing
	if err := f.client.getJSON(ctx, token, post.Permalink+".json", params, &tree); err != nil {
		logger.Warn("failed to fetch reddit comments",
			zap.String("permalink", post.Permalink),
			zap.Error(err),
		)
		return []string{}
	}

	if len(tree) < 2 {
		return []string{}
	}

	comments := make([]string, 0, f.limit)
	for _, child := range tree[1].Data.Children {
		if child.Kind != commentKind || child.Data.Body == "" {
			continue
		}
		comments = append(comments, child.Data.Body)
		if len(comments) == f.limit {
			break
		}
	}

	logger.Debug("fetched top comments",
		zap.String("permalink", post.Permalink),
		zap.Int("count", len(comments)),
	)

	return comments
}
