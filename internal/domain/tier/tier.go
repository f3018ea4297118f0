// Package tier maps community note volume onto scoring tiers and the
// scorer lineup each tier runs.
package tier

// ScoringTier is a note-volume band. Tiers are ordered; a community moves
// up (or down, after deletions) purely as a function of its note count.
type ScoringTier int

// Tier values, ascending by note volume.
const (
	Minimal ScoringTier = iota
	Limited
	Basic
	Intermediate
	Advanced
	Full
)

// String returns the canonical tier name.
func (t ScoringTier) String() string {
	switch t {
	case Minimal:
		return "MINIMAL"
	case Limited:
		return "LIMITED"
	case Basic:
		return "BASIC"
	case Intermediate:
		return "INTERMEDIATE"
	case Advanced:
		return "ADVANCED"
	case Full:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// Scorer names referenced by the tier table. Each must be registered with
// the scoring factory before a community in that tier is scored.
const (
	ScorerBayesianAverage = "BayesianAverageScorer"
	ScorerMFCore          = "MFCoreScorer"
	ScorerMFExpansion     = "MFExpansionScorer"
	ScorerMFGroup         = "MFGroupScorer"
)

// Thresholds describes one tier's note-count range and pipeline flags.
// MaxNotes is nil for the unbounded top tier.
type Thresholds struct {
	MinNotes             int
	MaxNotes             *int
	Scorers              []string
	RequiresFullPipeline bool
	EnableClustering     bool
	ConfidenceWarnings   bool
}

func bound(n int) *int { return &n }

// registry is the static tier table. The six [MinNotes, MaxNotes) ranges
// partition [0, inf) with no gaps or overlaps, and MinNotes is strictly
// increasing in tier order.
var registry = map[ScoringTier]Thresholds{
	Minimal: {
		MinNotes:           0,
		MaxNotes:           bound(200),
		Scorers:            []string{ScorerBayesianAverage},
		ConfidenceWarnings: true,
	},
	Limited: {
		MinNotes:           200,
		MaxNotes:           bound(1000),
		Scorers:            []string{ScorerMFCore},
		ConfidenceWarnings: true,
	},
	Basic: {
		MinNotes:             1000,
		MaxNotes:             bound(5000),
		Scorers:              []string{ScorerMFCore},
		RequiresFullPipeline: true,
		ConfidenceWarnings:   true,
	},
	Intermediate: {
		MinNotes:             5000,
		MaxNotes:             bound(10000),
		Scorers:              []string{ScorerMFCore, ScorerMFExpansion},
		RequiresFullPipeline: true,
	},
	Advanced: {
		MinNotes:             10000,
		MaxNotes:             bound(50000),
		Scorers:              []string{ScorerMFCore, ScorerMFExpansion},
		RequiresFullPipeline: true,
		EnableClustering:     true,
	},
	Full: {
		MinNotes:             50000,
		MaxNotes:             nil,
		Scorers:              []string{ScorerMFCore, ScorerMFExpansion, ScorerMFGroup},
		RequiresFullPipeline: true,
		EnableClustering:     true,
	},
}

// All returns the tiers in ascending order.
func All() []ScoringTier {
	return []ScoringTier{Minimal, Limited, Basic, Intermediate, Advanced, Full}
}

// ForNoteCount resolves the tier for a note count. Every non-negative count
// maps to exactly one tier; negative counts are treated as zero.
func ForNoteCount(count int) ScoringTier {
	if count < 0 {
		count = 0
	}
	for _, t := range All() {
		cfg := registry[t]
		if cfg.MaxNotes == nil || count < *cfg.MaxNotes {
			return t
		}
	}
	return Full
}

// ConfigFor returns the threshold configuration for a tier. Scorers are
// returned as a copy so callers cannot mutate the table.
func ConfigFor(t ScoringTier) Thresholds {
	cfg := registry[t]
	scorers := make([]string, len(cfg.Scorers))
	copy(scorers, cfg.Scorers)
	cfg.Scorers = scorers
	return cfg
}
