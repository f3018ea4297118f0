package validate_test

import (
	"testing"
	"time"

	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func validSnapshot() model.Snapshot {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return model.Snapshot{
		CommunityID: "community-1",
		Notes: []model.Note{
			{NoteID: "note-1", AuthorParticipantID: "alice", Classification: model.ClassificationMisinformed, Status: model.StatusNeedsMoreRatings, CreatedAt: now},
			{NoteID: "note-2", AuthorParticipantID: "bob", Classification: model.ClassificationNotMisleading, Status: model.StatusCurrentlyRatedHelpful, CreatedAt: now.Add(time.Hour)},
		},
		Ratings: []model.Rating{
			{NoteID: "note-1", RaterParticipantID: "carol", Helpfulness: model.HelpfulnessHelpful, CreatedAt: now.Add(2 * time.Hour)},
			{NoteID: "note-2", RaterParticipantID: "dave", Helpfulness: model.HelpfulnessNotHelpful, CreatedAt: now.Add(3 * time.Hour)},
		},
		Participants: []string{"alice", "bob", "carol", "dave"},
	}
}

func TestCheck(t *testing.T) {
	Convey("Given a consistent snapshot", t, func() {
		snap := validSnapshot()

		Convey("Then validation passes with no reasons", func() {
			result := validate.Check(snap)
			So(result.IsValid, ShouldBeTrue)
			So(result.Reasons, ShouldBeEmpty)
		})
	})

	Convey("Given a rating whose note is not in the snapshot", t, func() {
		snap := validSnapshot()
		snap.Ratings = append(snap.Ratings, model.Rating{
			NoteID:             "note-missing",
			RaterParticipantID: "carol",
			Helpfulness:        model.HelpfulnessHelpful,
		})

		Convey("Then the snapshot is rejected", func() {
			result := validate.Check(snap)
			So(result.IsValid, ShouldBeFalse)
			So(result.Reasons, ShouldNotBeEmpty)
			So(result.Reasons[0], ShouldContainSubstring, "note-missing")
		})
	})

	Convey("Given duplicate note ids", t, func() {
		snap := validSnapshot()
		snap.Notes = append(snap.Notes, snap.Notes[0])

		Convey("Then the snapshot is rejected", func() {
			result := validate.Check(snap)
			So(result.IsValid, ShouldBeFalse)
			So(result.Reasons[0], ShouldContainSubstring, "duplicate note id")
		})
	})

	Convey("Given a note with missing required fields", t, func() {
		snap := validSnapshot()
		snap.Notes[0].AuthorParticipantID = ""
		snap.Notes[0].Classification = "SOMETHING_ELSE"

		Convey("Then every defect is reported", func() {
			result := validate.Check(snap)
			So(result.IsValid, ShouldBeFalse)
			So(len(result.Reasons), ShouldEqual, 2)
		})
	})

	Convey("Given a rating with an unknown helpfulness level", t, func() {
		snap := validSnapshot()
		snap.Ratings[0].Helpfulness = "KINDA_HELPFUL"

		Convey("Then the snapshot is rejected", func() {
			result := validate.Check(snap)
			So(result.IsValid, ShouldBeFalse)
			So(result.Reasons[0], ShouldContainSubstring, "helpfulness")
		})
	})

	Convey("Given an empty snapshot", t, func() {
		Convey("Then validation passes", func() {
			result := validate.Check(model.Snapshot{CommunityID: "empty"})
			So(result.IsValid, ShouldBeTrue)
		})
	})
}
