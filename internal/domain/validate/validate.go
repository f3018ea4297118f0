// Package validate runs pre-flight consistency checks on a community
// snapshot before any scoring executes.
package validate

import (
	"fmt"

	"github.com/clearnote/notescore/internal/domain/model"
)

// Result reports the outcome of snapshot validation.
type Result struct {
	IsValid bool
	Reasons []string
}

// Check inspects a snapshot for internal consistency. Scoring must refuse
// to run on an invalid snapshot rather than skip bad rows: downstream
// algorithms treat the full set as jointly consistent, so silently
// dropping one row would distort every other score.
func Check(snap model.Snapshot) Result {
	var reasons []string

	noteIDs := make(map[string]bool, len(snap.Notes))
	for i, note := range snap.Notes {
		if note.NoteID == "" {
			reasons = append(reasons, fmt.Sprintf("note[%d]: empty note id", i))
			continue
		}
		if noteIDs[note.NoteID] {
			reasons = append(reasons, fmt.Sprintf("note %s: duplicate note id", note.NoteID))
		}
		noteIDs[note.NoteID] = true

		if note.AuthorParticipantID == "" {
			reasons = append(reasons, fmt.Sprintf("note %s: empty author participant id", note.NoteID))
		}
		switch note.Classification {
		case model.ClassificationNotMisleading, model.ClassificationMisinformed:
		default:
			reasons = append(reasons, fmt.Sprintf("note %s: unknown classification %q", note.NoteID, note.Classification))
		}
		switch note.Status {
		case model.StatusNeedsMoreRatings, model.StatusCurrentlyRatedHelpful, model.StatusCurrentlyRatedNotHelpful:
		default:
			reasons = append(reasons, fmt.Sprintf("note %s: unknown status %q", note.NoteID, note.Status))
		}
		if note.CreatedAt.IsZero() {
			reasons = append(reasons, fmt.Sprintf("note %s: zero creation timestamp", note.NoteID))
		}
	}

	for i, rating := range snap.Ratings {
		if rating.NoteID == "" {
			reasons = append(reasons, fmt.Sprintf("rating[%d]: empty note id", i))
			continue
		}
		if !noteIDs[rating.NoteID] {
			reasons = append(reasons, fmt.Sprintf("rating[%d]: note %s not in snapshot", i, rating.NoteID))
		}
		if rating.RaterParticipantID == "" {
			reasons = append(reasons, fmt.Sprintf("rating[%d]: empty rater participant id", i))
		}
		if !rating.Helpfulness.Valid() {
			reasons = append(reasons, fmt.Sprintf("rating[%d]: unknown helpfulness level %q", i, rating.Helpfulness))
		}
	}

	return Result{IsValid: len(reasons) == 0, Reasons: reasons}
}
