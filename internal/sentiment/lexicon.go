package sentiment

import (
	"context"
	"math"
	"strings"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// lexiconThreshold is the mean word weight needed to leave neutral
const lexiconThreshold = 0.2

// LexiconClassifier performs deterministic keyword-based classification.
// It needs no network and is used when no hosted model is configured.
type LexiconClassifier struct {
	positiveWords map[string]float64
	negativeWords map[string]float64
}

// NewLexiconClassifier creates new lexicon classifier
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positiveWords: buildPositiveWords(),
		negativeWords: buildNegativeWords(),
	}
}

func (l *LexiconClassifier) Name() string {
	return "lexicon"
}

// Classify returns a three-label distribution derived from matched keywords
func (l *LexiconClassifier) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	polarity := l.polarity(text)
	strength := math.Abs(polarity)

	positive, negative := 0.0, 0.0
	neutral := 1 - strength
	if strength >= lexiconThreshold {
		// Past the threshold the polar label must outrank neutral
		neutral = math.Min(neutral, lexiconThreshold)
	}
	if polarity > 0 {
		positive = strength
	} else {
		negative = strength
	}

	return []models.LabelScore{
		{Label: models.LabelPositive, Score: positive},
		{Label: models.LabelNeutral, Score: neutral},
		{Label: models.LabelNegative, Score: negative},
	}, nil
}

// polarity returns the mean weight of matched words in [-1, 1]
func (l *LexiconClassifier) polarity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))

	var score float64
	matchCount := 0

	for _, word := range words {
		word = strings.Trim(word, ".,!?-")

		if weight, ok := l.positiveWords[word]; ok {
			score += weight
			matchCount++
		}

		if weight, ok := l.negativeWords[word]; ok {
			score -= weight
			matchCount++
		}
	}

	if matchCount == 0 {
		return 0
	}

	return math.Max(-1, math.Min(1, score/float64(matchCount)))
}

func buildPositiveWords() map[string]float64 {
	return map[string]float64{
		"bullish":     1.0,
		"bull":        0.9,
		"bulls":       0.9,
		"rally":       0.9,
		"surge":       0.8,
		"soar":        0.8,
		"soaring":     0.8,
		"moon":        0.7,
		"mooning":     0.8,
		"rocket":      0.7,
		"gain":        0.6,
		"gains":       0.6,
		"profit":      0.6,
		"beat":        0.7,
		"beats":       0.7,
		"green":       0.6,
		"up":          0.4,
		"rise":        0.5,
		"growth":      0.5,
		"upgrade":     0.7,
		"upgraded":    0.7,
		"outperform":  0.7,
		"buy":         0.5,
		"calls":       0.5,
		"long":        0.4,
		"breakout":    0.7,
		"ath":         0.8,
		"dividend":    0.4,
		"buyback":     0.6,
		"undervalued": 0.6,
		"strong":      0.5,
		"record":      0.5,
	}
}

func buildNegativeWords() map[string]float64 {
	return map[string]float64{
		"bearish":      1.0,
		"bear":         0.9,
		"bears":        0.9,
		"crash":        1.0,
		"dump":         0.9,
		"plunge":       0.8,
		"tank":         0.8,
		"tanking":      0.8,
		"fall":         0.6,
		"drop":         0.6,
		"decline":      0.6,
		"loss":         0.7,
		"losses":       0.7,
		"miss":         0.7,
		"missed":       0.7,
		"red":          0.6,
		"down":         0.4,
		"sell":         0.5,
		"selloff":      0.7,
		"puts":         0.5,
		"short":        0.4,
		"downgrade":    0.7,
		"downgraded":   0.7,
		"underperform": 0.7,
		"lawsuit":      0.7,
		"fraud":        1.0,
		"bankruptcy":   1.0,
		"layoffs":      0.6,
		"recall":       0.6,
		"overvalued":   0.6,
		"bubble":       0.6,
		"weak":         0.5,
	}
}
