// Package records contains pure transforms from domain records into the
// fixed tabular shapes the batch matrix-factorization routine consumes.
// The routine is column-name-driven, not positional, so every table keeps
// an explicit column list alongside its rows and the lists must be
// preserved bit-for-bit.
package records

import (
	"math"
	"sort"

	"github.com/clearnote/notescore/internal/domain/model"
)

// DefaultModelingGroup is the cohort every participant falls into absent a
// richer cohort model. Participants excluded from modeling get group 0.
const DefaultModelingGroup = 13

// NoteStatusHistoryColumns is the canonical note-status-history column
// set, in order.
var NoteStatusHistoryColumns = []string{
	"noteId",
	"noteAuthorParticipantId",
	"createdAtMillis",
	"classification",
	"currentStatus",
	"lockedStatus",
	"timestampMillisOfLatestNonNMRStatus",
}

// NoteStatusHistoryRow is one note's status history entry.
//
// LockedStatus is always nil in this system; the column exists because the
// batch routine expects it. TimestampMillisOfLatestNonNMRStatus is NaN
// while the note still needs more ratings, and the note's creation millis
// otherwise — the system does not track a true status-change timestamp.
// NaN here means "no non-NMR status yet" and is semantically distinct from
// a null, so the two must never be conflated.
type NoteStatusHistoryRow struct {
	NoteID                              string
	NoteAuthorParticipantID             string
	CreatedAtMillis                     int64
	Classification                      string
	CurrentStatus                       string
	LockedStatus                        *string
	TimestampMillisOfLatestNonNMRStatus float64
}

// NoteStatusHistoryTable pairs the fixed column set with its rows.
type NoteStatusHistoryTable struct {
	Columns []string
	Rows    []NoteStatusHistoryRow
}

// BuildNoteStatusHistory produces one row per note. Given no notes it
// returns an empty table that still carries the full column set, never a
// schema-less empty result.
func BuildNoteStatusHistory(notes []model.Note) NoteStatusHistoryTable {
	rows := make([]NoteStatusHistoryRow, 0, len(notes))
	for _, note := range notes {
		createdAt := note.CreatedAt.UnixMilli()

		latestNonNMR := math.NaN()
		if note.Status != model.StatusNeedsMoreRatings {
			latestNonNMR = float64(createdAt)
		}

		rows = append(rows, NoteStatusHistoryRow{
			NoteID:                              note.NoteID,
			NoteAuthorParticipantID:             note.AuthorParticipantID,
			CreatedAtMillis:                     createdAt,
			Classification:                      string(note.Classification),
			CurrentStatus:                       string(note.Status),
			LockedStatus:                        nil,
			TimestampMillisOfLatestNonNMRStatus: latestNonNMR,
		})
	}
	return NoteStatusHistoryTable{Columns: columnsCopy(NoteStatusHistoryColumns), Rows: rows}
}

// UserEnrollmentColumns is the canonical user-enrollment column set.
var UserEnrollmentColumns = []string{
	"participantId",
	"modelingGroup",
}

// UserEnrollmentRow assigns one participant to a modeling group.
type UserEnrollmentRow struct {
	ParticipantID string
	ModelingGroup int
}

// UserEnrollmentTable pairs the fixed column set with its rows.
type UserEnrollmentTable struct {
	Columns []string
	Rows    []UserEnrollmentRow
}

// BuildUserEnrollment produces one row per distinct participant id, sorted
// for determinism. With includeUnassigned every participant lands in the
// default modeling group; otherwise they get group 0.
func BuildUserEnrollment(participants []string, includeUnassigned bool) UserEnrollmentTable {
	group := 0
	if includeUnassigned {
		group = DefaultModelingGroup
	}

	seen := make(map[string]bool, len(participants))
	ids := make([]string, 0, len(participants))
	for _, id := range participants {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]UserEnrollmentRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, UserEnrollmentRow{ParticipantID: id, ModelingGroup: group})
	}
	return UserEnrollmentTable{Columns: columnsCopy(UserEnrollmentColumns), Rows: rows}
}

// RatingColumns is the canonical ratings column set.
var RatingColumns = []string{
	"noteId",
	"raterParticipantId",
	"createdAtMillis",
	"helpfulnessLevel",
	"helpfulNum",
}

// RatingRow is one rating in the shape the batch routine reads.
type RatingRow struct {
	NoteID             string
	RaterParticipantID string
	CreatedAtMillis    int64
	HelpfulnessLevel   string
	HelpfulNum         float64
}

// RatingTable pairs the fixed column set with its rows.
type RatingTable struct {
	Columns []string
	Rows    []RatingRow
}

// BuildRatings produces one row per rating, preserving input order.
func BuildRatings(ratings []model.Rating) RatingTable {
	rows := make([]RatingRow, 0, len(ratings))
	for _, rating := range ratings {
		rows = append(rows, RatingRow{
			NoteID:             rating.NoteID,
			RaterParticipantID: rating.RaterParticipantID,
			CreatedAtMillis:    rating.CreatedAt.UnixMilli(),
			HelpfulnessLevel:   string(rating.Helpfulness),
			HelpfulNum:         rating.Helpfulness.Num(),
		})
	}
	return RatingTable{Columns: columnsCopy(RatingColumns), Rows: rows}
}

func columnsCopy(cols []string) []string {
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}
