package mf_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/internal/domain/scoring"
	"github.com/clearnote/notescore/internal/domain/tier"
	"github.com/clearnote/notescore/internal/mf"
	"github.com/clearnote/notescore/internal/mf/core"
	. "github.com/smartystreets/goconvey/convey"
)

// communitySnapshot builds a snapshot where every rater rates one clearly
// helpful and one clearly unhelpful note.
func communitySnapshot(raters int) model.Snapshot {
	created := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)

	snap := model.Snapshot{
		CommunityID: "community-1",
		Notes: []model.Note{
			{NoteID: "note-good", AuthorParticipantID: "author-1", Classification: model.ClassificationMisinformed, Status: model.StatusNeedsMoreRatings, CreatedAt: created},
			{NoteID: "note-bad", AuthorParticipantID: "author-2", Classification: model.ClassificationMisinformed, Status: model.StatusNeedsMoreRatings, CreatedAt: created},
		},
	}
	for i := 0; i < raters; i++ {
		rater := fmt.Sprintf("rater-%d", i)
		snap.Participants = append(snap.Participants, rater)
		snap.Ratings = append(snap.Ratings,
			model.Rating{NoteID: "note-good", RaterParticipantID: rater, Helpfulness: model.HelpfulnessHelpful, CreatedAt: created.Add(time.Duration(i) * time.Second)},
			model.Rating{NoteID: "note-bad", RaterParticipantID: rater, Helpfulness: model.HelpfulnessNotHelpful, CreatedAt: created.Add(time.Duration(i) * time.Second)},
		)
	}
	// A lurker never rates anything; only expansion variants model it.
	snap.Participants = append(snap.Participants, "lurker")
	return snap
}

func TestAdapterScoreBatch(t *testing.T) {
	Convey("Given a core MF adapter", t, func() {
		adapter := mf.New(mf.WithVariant(mf.VariantCore))
		snap := communitySnapshot(8)

		Convey("When scoring the batch", func() {
			results, err := adapter.ScoreBatch(context.Background(), snap)

			Convey("Then every note gets a result keyed by id", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(results["note-good"].Score, ShouldBeGreaterThan, results["note-bad"].Score)
			})

			Convey("Then confidence follows the rating volume contract", func() {
				So(err, ShouldBeNil)
				So(results["note-good"].ConfidenceLevel, ShouldEqual, scoring.ConfidenceStandard)
			})

			Convey("Then metadata carries the fit details", func() {
				So(err, ShouldBeNil)
				meta := results["note-good"].Metadata
				So(meta["scorer"], ShouldEqual, tier.ScorerMFCore)
				So(meta["ratingCount"], ShouldEqual, 8)
				So(meta["status"], ShouldEqual, string(model.StatusCurrentlyRatedHelpful))
			})

			Convey("And per-note lookups serve the primed results", func() {
				So(err, ShouldBeNil)
				res, lookupErr := adapter.ScoreNote(context.Background(), "note-good", nil)
				So(lookupErr, ShouldBeNil)
				So(res.Score, ShouldEqual, results["note-good"].Score)
			})
		})
	})
}

func TestAdapterScoreNoteUnprimed(t *testing.T) {
	Convey("Given an adapter that never ran a batch", t, func() {
		adapter := mf.New()

		Convey("When looking up a note", func() {
			_, err := adapter.ScoreNote(context.Background(), "note-good", nil)

			Convey("Then the unprimed error surfaces", func() {
				So(errors.Is(err, scoring.ErrNotPrimed), ShouldBeTrue)
			})
		})
	})
}

func TestAdapterUnknownNote(t *testing.T) {
	Convey("Given a primed adapter", t, func() {
		adapter := mf.New()
		_, err := adapter.ScoreBatch(context.Background(), communitySnapshot(8))
		So(err, ShouldBeNil)

		Convey("When looking up a note outside the batch", func() {
			_, lookupErr := adapter.ScoreNote(context.Background(), "note-unknown", nil)

			Convey("Then the lookup fails", func() {
				So(lookupErr, ShouldNotBeNil)
			})
		})
	})
}

func TestAdapterDeadline(t *testing.T) {
	Convey("Given an adapter with a deadline far below the fit cost", t, func() {
		adapter := mf.New(
			mf.WithDeadline(time.Millisecond),
			mf.WithParams(core.Params{Epochs: 5_000_000}),
		)

		Convey("When scoring a batch", func() {
			results, err := adapter.ScoreBatch(context.Background(), communitySnapshot(16))

			Convey("Then the pass aborts with the timeout error and no partial results", func() {
				So(errors.Is(err, scoring.ErrScorerTimeout), ShouldBeTrue)
				So(results, ShouldBeNil)
			})

			Convey("And the adapter stays unprimed", func() {
				_, lookupErr := adapter.ScoreNote(context.Background(), "note-good", nil)
				So(errors.Is(lookupErr, scoring.ErrNotPrimed), ShouldBeTrue)
			})
		})
	})
}

func TestAdapterVariants(t *testing.T) {
	Convey("Given the three adapter variants", t, func() {
		snap := communitySnapshot(8)

		Convey("When the expansion variant scores the batch", func() {
			adapter := mf.New(mf.WithVariant(mf.VariantExpansion))
			results, err := adapter.ScoreBatch(context.Background(), snap)

			Convey("Then the fit covers every note and names itself", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(adapter.Name(), ShouldEqual, tier.ScorerMFExpansion)
			})
		})

		Convey("When the group variant scores the batch", func() {
			adapter := mf.New(mf.WithVariant(mf.VariantGroup))
			results, err := adapter.ScoreBatch(context.Background(), snap)

			Convey("Then the single default group reduces to one fit", func() {
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(results["note-good"].Score, ShouldBeGreaterThan, results["note-bad"].Score)
			})
		})
	})
}
