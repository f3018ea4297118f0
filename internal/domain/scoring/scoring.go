// Package scoring defines the contract every scoring algorithm satisfies
// and the uniform result it produces.
package scoring

import (
	"context"

	"github.com/clearnote/notescore/internal/domain/model"
)

// Confidence levels attached to results. The Bayesian path uses
// provisional/moderate/high; the matrix-factorization path uses
// provisional/standard/high.
const (
	ConfidenceProvisional = "provisional"
	ConfidenceModerate    = "moderate"
	ConfidenceStandard    = "standard"
	ConfidenceHigh        = "high"
)

// Result is the uniform output record, one per note per scoring pass.
// Results are immutable once created and are not persisted by this engine.
type Result struct {
	NoteID          string
	Score           float64 // in [0,1]
	ConfidenceLevel string
	Metadata        map[string]any
}

// Scorer scores a single note from its ordered rating sequence. Every
// concrete algorithm, however it is internally structured, is reachable
// through this one method.
type Scorer interface {
	// ScoreNote computes a result for one note. Ratings are the note's
	// helpfulness values in [0,1], ordered by rating creation time.
	ScoreNote(ctx context.Context, noteID string, ratings []float64) (Result, error)
}

// BatchScorer is implemented by scorers that compute all notes jointly from
// a community snapshot. Such scorers must be primed with ScoreBatch before
// per-note ScoreNote lookups succeed.
type BatchScorer interface {
	Scorer

	// ScoreBatch runs the whole-community computation and returns results
	// keyed by note id. The context carries the wall-clock deadline; on
	// expiry the batch is aborted and no partial results are returned.
	ScoreBatch(ctx context.Context, snap model.Snapshot) (map[string]Result, error)
}
