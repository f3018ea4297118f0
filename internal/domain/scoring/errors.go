package scoring

import "errors"

// Sentinel kinds for scoring errors. These allow errors.Is/As from callers.
var (
	// ErrUnknownScorer means a tier referenced a scorer name that was never
	// registered. This is a configuration bug and is fatal for the pass.
	ErrUnknownScorer = errors.New("unknown scorer")

	// ErrScorerTimeout means a batch scorer exceeded its wall-clock
	// deadline. The whole batch is aborted; no partial results exist.
	ErrScorerTimeout = errors.New("scorer deadline exceeded")

	// ErrNotPrimed means ScoreNote was called on a batch scorer before
	// ScoreBatch populated its per-note results.
	ErrNotPrimed = errors.New("batch scorer not primed")
)
