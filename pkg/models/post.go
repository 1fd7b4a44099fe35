package models

// Post is a discussion thread candidate retrieved from a forum section
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Selftext  string `json:"selftext"`
	URL       string `json:"url"` // dedup key
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"` // source popularity, ordering only

	// ThreadSentiment is set once after the thread and its replies are scored (0-100)
	ThreadSentiment int `json:"threadSentiment"`
}

// Text returns title and body joined the way they are sent to the scorer
func (p *Post) Text() string {
	return p.Title + " " + p.Selftext
}
