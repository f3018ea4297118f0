package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/clearnote/notescore/internal/domain/tier"
)

// Default Bayesian configuration constants.
const (
	defaultPriorMean   = 0.5 // neutral helpfulness prior
	defaultPriorWeight = 5.0 // prior strength in pseudo-ratings

	provisionalBelow = 5  // fewer ratings than this => "provisional"
	moderateBelow    = 20 // fewer ratings than this => "moderate"
)

// BayesianOption applies a configuration option to the BayesianScorer.
type BayesianOption func(*BayesianScorer)

// WithPrior sets the prior mean and its weight in pseudo-ratings.
func WithPrior(mean, weight float64) BayesianOption {
	return func(s *BayesianScorer) {
		if mean >= 0 && mean <= 1 {
			s.priorMean = mean
		}
		if weight > 0 {
			s.priorWeight = weight
		}
	}
}

// BayesianScorer blends a helpfulness prior with the observed ratings of a
// single note. It needs no community-wide context, so notes can be scored
// independently and in any order. Used by the MINIMAL tier, where matrix
// factorization is not yet statistically meaningful.
type BayesianScorer struct {
	priorMean   float64
	priorWeight float64
}

// NewBayesianScorer creates a Bayesian average scorer with options.
func NewBayesianScorer(opts ...BayesianOption) *BayesianScorer {
	s := &BayesianScorer{
		priorMean:   defaultPriorMean,
		priorWeight: defaultPriorWeight,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScoreNote computes the prior-blended average of the note's ratings.
func (s *BayesianScorer) ScoreNote(ctx context.Context, noteID string, ratings []float64) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("bayesian scoring cancelled: %w", ctx.Err())
	default:
	}

	sum := 0.0
	for _, r := range ratings {
		sum += clamp01(r)
	}

	n := float64(len(ratings))
	score := (s.priorMean*s.priorWeight + sum) / (s.priorWeight + n)

	return Result{
		NoteID:          noteID,
		Score:           score,
		ConfidenceLevel: s.confidence(len(ratings)),
		Metadata: map[string]any{
			"scorer":      tier.ScorerBayesianAverage,
			"ratingCount": len(ratings),
			"priorMean":   s.priorMean,
			"priorWeight": s.priorWeight,
		},
	}, nil
}

// confidence classifies reliability from rating volume alone.
func (s *BayesianScorer) confidence(ratingCount int) string {
	switch {
	case ratingCount < provisionalBelow:
		return ConfidenceProvisional
	case ratingCount < moderateBelow:
		return ConfidenceModerate
	default:
		return ConfidenceHigh
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func init() {
	Register(tier.ScorerBayesianAverage, func() Scorer { return NewBayesianScorer() })
}
