package sentiment

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// MinTextLength is the shortest sanitized text worth sending to a classifier
const MinTextLength = 10

// ErrNoCandidates is returned when a classifier answers with an empty distribution
var ErrNoCandidates = errors.New("classifier returned no label candidates")

// Classifier returns a label distribution for a cleaned text
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.LabelScore, error)
	Name() string
}

// Scorer maps text to a 0-100 sentiment value. It never fails: every
// classifier error degrades to the neutral value.
type Scorer struct {
	classifier Classifier
}

// NewScorer creates new scorer on top of a classifier
func NewScorer(classifier Classifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Score returns sentiment of text in [0, 100]
func (s *Scorer) Score(ctx context.Context, text string) int {
	clean := Sanitize(text)
	if len(clean) < MinTextLength {
		logger.Debug("text too short, using neutral score",
			zap.Int("length", len(clean)),
		)
		return models.SentimentNeutral
	}

	value, err := s.classify(ctx, clean)
	if err != nil {
		logger.Warn("sentiment scoring degraded to neutral",
			zap.String("classifier", s.classifier.Name()),
			zap.Error(err),
		)
		return models.SentimentNeutral
	}

	return value
}

func (s *Scorer) classify(ctx context.Context, clean string) (int, error) {
	candidates, err := s.classifier.Classify(ctx, clean)
	if err != nil {
		return 0, err
	}

	best, err := bestCandidate(candidates)
	if err != nil {
		return 0, err
	}

	return models.LabelToSentiment(strings.ToLower(best.Label)), nil
}

// bestCandidate picks the highest score, first occurrence wins ties
func bestCandidate(candidates []models.LabelScore) (models.LabelScore, error) {
	if len(candidates) == 0 {
		return models.LabelScore{}, ErrNoCandidates
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	return best, nil
}
