// Package trigger detects when a community crosses the note volume that
// makes batch matrix factorization viable.
package trigger

// DefaultThreshold is the note count at which batch scoring becomes
// viable. It is deliberately an independent constant from the LIMITED
// tier's lower bound: the two happen to coincide today but are not
// coupled, and either may move without the other.
const DefaultThreshold = 200

// Option applies a configuration option to the BatchTrigger.
type Option func(*BatchTrigger)

// WithThreshold overrides the batch-eligibility threshold.
func WithThreshold(threshold int) Option {
	return func(t *BatchTrigger) {
		if threshold > 0 {
			t.threshold = threshold
		}
	}
}

// BatchTrigger answers eligibility questions about a community's note
// volume. It holds no per-community state; callers pass counts in.
type BatchTrigger struct {
	threshold int
}

// New creates a BatchTrigger with options.
func New(opts ...Option) *BatchTrigger {
	t := &BatchTrigger{threshold: DefaultThreshold}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Threshold returns the configured eligibility threshold.
func (t *BatchTrigger) Threshold() int {
	return t.threshold
}

// ShouldTrigger reports whether a community at noteCount is batch-eligible.
func (t *BatchTrigger) ShouldTrigger(noteCount int) bool {
	return noteCount >= t.threshold
}

// CheckTransition reports whether the community crossed the threshold
// between two observations: true iff previous < threshold <= current.
// Used to fire a one-time full re-score when a community first becomes
// eligible, as distinct from "already eligible".
func (t *BatchTrigger) CheckTransition(previousCount, currentCount int) bool {
	return previousCount < t.threshold && currentCount >= t.threshold
}

// Status reports a community's position relative to the threshold.
type Status struct {
	Threshold      int  `json:"threshold"`
	NoteCount      int  `json:"note_count"`
	Ready          bool `json:"ready"`
	NotesRemaining int  `json:"notes_remaining"`
}

// GetStatus returns the threshold, current count, readiness, and the
// number of notes remaining until eligibility (zero once eligible).
func (t *BatchTrigger) GetStatus(noteCount int) Status {
	remaining := t.threshold - noteCount
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Threshold:      t.threshold,
		NoteCount:      noteCount,
		Ready:          t.ShouldTrigger(noteCount),
		NotesRemaining: remaining,
	}
}
