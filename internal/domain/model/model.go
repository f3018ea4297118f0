// Package model contains domain records passed between layers.
package model

import "time"

// NoteClassification is the author's claim about the annotated content.
type NoteClassification string

// Note classification values.
const (
	ClassificationNotMisleading NoteClassification = "NOT_MISLEADING"
	ClassificationMisinformed   NoteClassification = "MISINFORMED_OR_POTENTIALLY_MISLEADING"
)

// NoteStatus is the consensus status of a note at snapshot time.
type NoteStatus string

// Note status values.
const (
	StatusNeedsMoreRatings         NoteStatus = "NEEDS_MORE_RATINGS"
	StatusCurrentlyRatedHelpful    NoteStatus = "CURRENTLY_RATED_HELPFUL"
	StatusCurrentlyRatedNotHelpful NoteStatus = "CURRENTLY_RATED_NOT_HELPFUL"
)

// HelpfulnessLevel is a rater's categorical judgment of a note.
type HelpfulnessLevel string

// Helpfulness level values.
const (
	HelpfulnessHelpful         HelpfulnessLevel = "HELPFUL"
	HelpfulnessSomewhatHelpful HelpfulnessLevel = "SOMEWHAT_HELPFUL"
	HelpfulnessNotHelpful      HelpfulnessLevel = "NOT_HELPFUL"
)

// Num maps a helpfulness level onto the [0,1] scale used by every scorer.
// Unknown levels map to 0 and are expected to be rejected by validation
// before scoring runs.
func (h HelpfulnessLevel) Num() float64 {
	switch h {
	case HelpfulnessHelpful:
		return 1.0
	case HelpfulnessSomewhatHelpful:
		return 0.5
	case HelpfulnessNotHelpful:
		return 0.0
	default:
		return 0.0
	}
}

// Valid reports whether h is one of the known helpfulness levels.
func (h HelpfulnessLevel) Valid() bool {
	switch h {
	case HelpfulnessHelpful, HelpfulnessSomewhatHelpful, HelpfulnessNotHelpful:
		return true
	default:
		return false
	}
}

// Note is a community-contributed annotation subject to rating.
// Owned by the storage layer; the engine only reads snapshots.
type Note struct {
	NoteID              string
	AuthorParticipantID string
	Classification      NoteClassification
	Status              NoteStatus
	CreatedAt           time.Time
}

// Rating is one participant's helpfulness judgment on a note.
// Ratings are append-only and never mutated once created.
type Rating struct {
	NoteID             string
	RaterParticipantID string
	Helpfulness        HelpfulnessLevel
	CreatedAt          time.Time
}

// Snapshot is one consistent view of a community's data, sufficient for a
// single synchronous scoring pass. The engine does not assume the snapshot
// remains valid beyond one invocation.
type Snapshot struct {
	CommunityID  string
	Notes        []Note
	Ratings      []Rating
	Participants []string
}

// NoteCount returns the number of notes in the snapshot. Tier resolution is
// driven entirely by this value.
func (s Snapshot) NoteCount() int {
	return len(s.Notes)
}
