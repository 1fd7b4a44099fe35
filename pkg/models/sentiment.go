package models

// Sentiment values on the 0-100 scale
const (
	SentimentBearish = 0
	SentimentNeutral = 50
	SentimentBullish = 100
)

// Classifier labels
const (
	LabelPositive = "positive"
	LabelNeutral  = "neutral"
	LabelNegative = "negative"
)

// LabelScore is one candidate of a classifier label distribution
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AggregationResult is the ticker-level outcome of the sentiment pipeline.
// Treated as immutable once produced; it is the unit stored in the result cache.
type AggregationResult struct {
	SentimentScore int    `json:"sentimentScore"`
	Posts          []Post `json:"posts"`
}

// LabelToSentiment maps a classifier label onto the 0-100 scale
func LabelToSentiment(label string) int {
	switch label {
	case LabelPositive:
		return SentimentBullish
	case LabelNegative:
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// ClampSentiment bounds a score to [0, 100]
func ClampSentiment(v int) int {
	if v < SentimentBearish {
		return SentimentBearish
	}
	if v > SentimentBullish {
		return SentimentBullish
	}
	return v
}
