// Package mf adapts the batch matrix-factorization routine to the
// per-note scorer contract. ScoreBatch runs the whole-community fit under
// a wall-clock deadline and caches per-note results; ScoreNote then serves
// uniform lookups, so callers consume MF output exactly like any direct
// per-note scorer.
package mf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/internal/domain/scoring"
	"github.com/clearnote/notescore/internal/domain/tier"
	"github.com/clearnote/notescore/internal/mf/core"
	"github.com/clearnote/notescore/internal/mf/records"
	"github.com/clearnote/notescore/pkg/metrics"
)

// Default adapter configuration constants.
const (
	defaultDeadline = 30 * time.Second

	provisionalBelow = 5  // fewer ratings than this => "provisional"
	standardBelow    = 20 // fewer ratings than this => "standard"
)

// Variant selects which MF lineup member an adapter instance is.
type Variant string

// Adapter variants.
const (
	// VariantCore models only participants active in the snapshot.
	VariantCore Variant = "core"
	// VariantExpansion additionally enrolls the full participant roster in
	// the default modeling group.
	VariantExpansion Variant = "expansion"
	// VariantGroup fits each modeling group separately. With the single
	// default group this reduces to one expansion fit.
	VariantGroup Variant = "group"
)

// Option applies a configuration option to the Adapter.
type Option func(*Adapter)

// WithVariant selects the adapter variant.
func WithVariant(v Variant) Option {
	return func(a *Adapter) {
		switch v {
		case VariantCore, VariantExpansion, VariantGroup:
			a.variant = v
		}
	}
}

// WithDeadline bounds the wall-clock time of one batch fit.
func WithDeadline(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.deadline = d
		}
	}
}

// WithParams overrides the fit parameters.
func WithParams(p core.Params) Option {
	return func(a *Adapter) {
		a.params = p
	}
}

// Adapter implements scoring.BatchScorer over the core fit routine.
// An adapter instance belongs to a single scoring pass; the primed result
// cache is never shared across communities.
type Adapter struct {
	variant  Variant
	deadline time.Duration
	params   core.Params

	results map[string]scoring.Result
}

// New creates an MF adapter with options.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		variant:  VariantCore,
		deadline: defaultDeadline,
		params:   core.DefaultParams(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the factory name of this adapter's variant.
func (a *Adapter) Name() string {
	switch a.variant {
	case VariantExpansion:
		return tier.ScorerMFExpansion
	case VariantGroup:
		return tier.ScorerMFGroup
	default:
		return tier.ScorerMFCore
	}
}

// ScoreBatch builds the three record tables from the snapshot, runs the
// fit under the adapter deadline, and maps the output back to per-note
// results. On timeout it returns scoring.ErrScorerTimeout and caches
// nothing: the pass either completes for every note or not at all.
func (a *Adapter) ScoreBatch(ctx context.Context, snap model.Snapshot) (map[string]scoring.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.deadline)
	defer cancel()

	history := records.BuildNoteStatusHistory(snap.Notes)
	ratings := records.BuildRatings(snap.Ratings)
	enrollment := a.buildEnrollment(snap)

	start := time.Now()
	out, err := a.fit(ctx, ratings, history, enrollment)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordMFTimeout()
			return nil, fmt.Errorf("%w: %s after %s", scoring.ErrScorerTimeout, a.Name(), a.deadline)
		}
		return nil, fmt.Errorf("%s batch failed: %w", a.Name(), err)
	}
	metrics.ObserveMFFitDuration(float64(time.Since(start).Milliseconds()))

	results := make(map[string]scoring.Result, len(out.Notes))
	for id, note := range out.Notes {
		results[id] = scoring.Result{
			NoteID:          id,
			Score:           note.Score,
			ConfidenceLevel: confidence(note.RatingCount),
			Metadata: map[string]any{
				"scorer":          a.Name(),
				"variant":         string(a.variant),
				"intercept":       note.Intercept,
				"factor":          note.Factor,
				"status":          note.Status,
				"ratingCount":     note.RatingCount,
				"globalIntercept": out.GlobalIntercept,
				"epochs":          out.Epochs,
			},
		}
	}

	a.results = results
	return a.copyResults(), nil
}

// ScoreNote serves one note from the primed batch output. The ratings
// argument is ignored: MF scores come from the joint fit, not from the
// note's rating sequence alone.
func (a *Adapter) ScoreNote(ctx context.Context, noteID string, _ []float64) (scoring.Result, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Result{}, fmt.Errorf("mf lookup cancelled: %w", err)
	}
	if a.results == nil {
		return scoring.Result{}, fmt.Errorf("%w: run ScoreBatch before ScoreNote (%s)", scoring.ErrNotPrimed, a.Name())
	}
	res, ok := a.results[noteID]
	if !ok {
		return scoring.Result{}, fmt.Errorf("note %q not present in %s batch output", noteID, a.Name())
	}
	return res, nil
}

// fit dispatches to one joint fit, or one fit per modeling group for the
// group variant.
func (a *Adapter) fit(ctx context.Context, ratings records.RatingTable, history records.NoteStatusHistoryTable, enrollment records.UserEnrollmentTable) (*core.Output, error) {
	if a.variant != VariantGroup {
		return core.Run(ctx, ratings, history, enrollment, a.params)
	}

	groups := make(map[int][]records.UserEnrollmentRow)
	for _, row := range enrollment.Rows {
		groups[row.ModelingGroup] = append(groups[row.ModelingGroup], row)
	}

	merged := &core.Output{
		Notes:  make(map[string]core.NoteResult),
		Raters: make(map[string]core.RaterResult),
	}
	for _, rows := range groups {
		sub := records.UserEnrollmentTable{Columns: enrollment.Columns, Rows: rows}
		out, err := core.Run(ctx, ratings, history, sub, a.params)
		if err != nil {
			return nil, err
		}
		merged.GlobalIntercept = out.GlobalIntercept
		merged.Epochs += out.Epochs
		for id, note := range out.Notes {
			// A note keeps the result from the group holding most of its
			// ratings; later groups only fill gaps.
			if prev, ok := merged.Notes[id]; !ok || note.RatingCount > prev.RatingCount {
				merged.Notes[id] = note
			}
		}
		for id, rater := range out.Raters {
			merged.Raters[id] = rater
		}
	}
	return merged, nil
}

// buildEnrollment assembles the participant roster the variant models.
func (a *Adapter) buildEnrollment(snap model.Snapshot) records.UserEnrollmentTable {
	active := make([]string, 0, len(snap.Ratings)+len(snap.Notes))
	for _, r := range snap.Ratings {
		active = append(active, r.RaterParticipantID)
	}
	for _, n := range snap.Notes {
		active = append(active, n.AuthorParticipantID)
	}

	if a.variant == VariantCore {
		return records.BuildUserEnrollment(active, false)
	}
	roster := append(active, snap.Participants...)
	return records.BuildUserEnrollment(roster, true)
}

func (a *Adapter) copyResults() map[string]scoring.Result {
	out := make(map[string]scoring.Result, len(a.results))
	for id, res := range a.results {
		out[id] = res
	}
	return out
}

// confidence classifies reliability of an MF note result from that note's
// rating volume. Fit variance is not exposed by the routine, so volume is
// the contract.
func confidence(ratingCount int) string {
	switch {
	case ratingCount < provisionalBelow:
		return scoring.ConfidenceProvisional
	case ratingCount < standardBelow:
		return scoring.ConfidenceStandard
	default:
		return scoring.ConfidenceHigh
	}
}

func init() {
	scoring.Register(tier.ScorerMFCore, func() scoring.Scorer { return New(WithVariant(VariantCore)) })
	scoring.Register(tier.ScorerMFExpansion, func() scoring.Scorer { return New(WithVariant(VariantExpansion)) })
	scoring.Register(tier.ScorerMFGroup, func() scoring.Scorer { return New(WithVariant(VariantGroup)) })
}
