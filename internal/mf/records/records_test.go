package records_test

import (
	"math"
	"testing"
	"time"

	"github.com/clearnote/notescore/internal/domain/model"
	records "github.com/clearnote/notescore/internal/mf/records"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildNoteStatusHistory(t *testing.T) {
	Convey("Given the note status history builder", t, func() {
		Convey("When building from no notes", func() {
			table := records.BuildNoteStatusHistory(nil)

			Convey("Then the table is empty but keeps the full column set", func() {
				So(table.Rows, ShouldBeEmpty)
				So(table.Columns, ShouldResemble, []string{
					"noteId",
					"noteAuthorParticipantId",
					"createdAtMillis",
					"classification",
					"currentStatus",
					"lockedStatus",
					"timestampMillisOfLatestNonNMRStatus",
				})
				So(len(table.Columns), ShouldEqual, 7)
			})
		})

		Convey("When building from one NMR note and one CRH note", func() {
			created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
			table := records.BuildNoteStatusHistory([]model.Note{
				{NoteID: "note-nmr", AuthorParticipantID: "alice", Classification: model.ClassificationMisinformed, Status: model.StatusNeedsMoreRatings, CreatedAt: created},
				{NoteID: "note-crh", AuthorParticipantID: "bob", Classification: model.ClassificationNotMisleading, Status: model.StatusCurrentlyRatedHelpful, CreatedAt: created.Add(time.Minute)},
			})

			Convey("Then lockedStatus is null for both rows", func() {
				So(table.Rows[0].LockedStatus, ShouldBeNil)
				So(table.Rows[1].LockedStatus, ShouldBeNil)
			})

			Convey("Then the NMR note carries NaN and the CRH note a finite timestamp", func() {
				So(math.IsNaN(table.Rows[0].TimestampMillisOfLatestNonNMRStatus), ShouldBeTrue)
				So(math.IsNaN(table.Rows[1].TimestampMillisOfLatestNonNMRStatus), ShouldBeFalse)
				So(table.Rows[1].TimestampMillisOfLatestNonNMRStatus, ShouldEqual, float64(created.Add(time.Minute).UnixMilli()))
			})

			Convey("Then creation timestamps land as epoch millis", func() {
				So(table.Rows[0].CreatedAtMillis, ShouldEqual, created.UnixMilli())
			})
		})

		Convey("When building from a CRNH note", func() {
			created := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
			table := records.BuildNoteStatusHistory([]model.Note{
				{NoteID: "note-crnh", AuthorParticipantID: "carol", Classification: model.ClassificationMisinformed, Status: model.StatusCurrentlyRatedNotHelpful, CreatedAt: created},
			})

			Convey("Then the non-NMR timestamp is finite", func() {
				So(math.IsNaN(table.Rows[0].TimestampMillisOfLatestNonNMRStatus), ShouldBeFalse)
			})
		})
	})
}

func TestBuildUserEnrollment(t *testing.T) {
	Convey("Given the user enrollment builder", t, func() {
		participants := []string{"carol", "alice", "bob", "alice", ""}

		Convey("When including unassigned participants", func() {
			table := records.BuildUserEnrollment(participants, true)

			Convey("Then every participant lands once in the default modeling group", func() {
				So(table.Columns, ShouldResemble, []string{"participantId", "modelingGroup"})
				So(len(table.Rows), ShouldEqual, 3)
				So(table.Rows[0].ParticipantID, ShouldEqual, "alice")
				for _, row := range table.Rows {
					So(row.ModelingGroup, ShouldEqual, records.DefaultModelingGroup)
				}
			})
		})

		Convey("When excluding unassigned participants", func() {
			table := records.BuildUserEnrollment(participants, false)

			Convey("Then the modeling group is zero", func() {
				for _, row := range table.Rows {
					So(row.ModelingGroup, ShouldEqual, 0)
				}
			})
		})

		Convey("When building from no participants", func() {
			table := records.BuildUserEnrollment(nil, true)

			Convey("Then the column set survives", func() {
				So(table.Rows, ShouldBeEmpty)
				So(table.Columns, ShouldResemble, []string{"participantId", "modelingGroup"})
			})
		})
	})
}

func TestBuildRatings(t *testing.T) {
	Convey("Given the ratings builder", t, func() {
		created := time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
		ratings := []model.Rating{
			{NoteID: "note-1", RaterParticipantID: "dave", Helpfulness: model.HelpfulnessHelpful, CreatedAt: created},
			{NoteID: "note-1", RaterParticipantID: "erin", Helpfulness: model.HelpfulnessSomewhatHelpful, CreatedAt: created.Add(time.Second)},
			{NoteID: "note-2", RaterParticipantID: "dave", Helpfulness: model.HelpfulnessNotHelpful, CreatedAt: created.Add(2 * time.Second)},
		}

		Convey("When building the table", func() {
			table := records.BuildRatings(ratings)

			Convey("Then the column contract is preserved", func() {
				So(table.Columns, ShouldResemble, []string{
					"noteId",
					"raterParticipantId",
					"createdAtMillis",
					"helpfulnessLevel",
					"helpfulNum",
				})
			})

			Convey("Then helpfulness maps onto the numeric scale", func() {
				So(table.Rows[0].HelpfulNum, ShouldEqual, 1.0)
				So(table.Rows[1].HelpfulNum, ShouldEqual, 0.5)
				So(table.Rows[2].HelpfulNum, ShouldEqual, 0.0)
			})

			Convey("Then input order and timestamps survive", func() {
				So(table.Rows[0].NoteID, ShouldEqual, "note-1")
				So(table.Rows[2].NoteID, ShouldEqual, "note-2")
				So(table.Rows[1].CreatedAtMillis, ShouldEqual, created.Add(time.Second).UnixMilli())
			})
		})

		Convey("When building from no ratings", func() {
			table := records.BuildRatings(nil)

			Convey("Then the column set survives", func() {
				So(table.Rows, ShouldBeEmpty)
				So(len(table.Columns), ShouldEqual, 5)
			})
		})
	})
}
