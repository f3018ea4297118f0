// Package core implements the batch matrix-factorization routine that
// scores all notes of a community jointly. Ratings are modeled as
//
//	rating ≈ mu + noteIntercept + raterIntercept + noteFactor*raterFactor
//
// fitted by gradient descent with L2 regularization. A note's helpfulness
// is read off its intercept: notes rated helpful by raters who disagree
// elsewhere earn a high intercept, while notes liked only by one side of
// the factor axis do not.
package core

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/internal/mf/records"
)

// Default fit parameters.
const (
	defaultEpochs         = 200
	defaultLearningRate   = 0.05
	defaultRegularization = 0.03
	defaultSeed           = 42 // deterministic runs for reproducible scoring

	// Status thresholds on the note intercept. A note is currently rated
	// helpful above crhThreshold; it is rated not helpful below an
	// intercept bound that tightens with the polarization of the note.
	crhThreshold      = 0.40
	crnhIntercept     = -0.05
	crnhFactorPenalty = 0.80

	// Notes with fewer raters than this stay NEEDS_MORE_RATINGS no matter
	// what the fit says.
	minRatersForStatus = 5
)

// Params controls one batch fit.
type Params struct {
	Epochs         int
	LearningRate   float64
	Regularization float64
	Seed           int64
}

// DefaultParams returns the standard fit parameters.
func DefaultParams() Params {
	return Params{
		Epochs:         defaultEpochs,
		LearningRate:   defaultLearningRate,
		Regularization: defaultRegularization,
		Seed:           defaultSeed,
	}
}

// NoteResult is the batch output for one note.
type NoteResult struct {
	NoteID      string
	Intercept   float64
	Factor      float64
	Score       float64 // in [0,1]
	Status      string
	RatingCount int
}

// RaterResult is the batch output for one participant.
type RaterResult struct {
	ParticipantID    string
	Intercept        float64
	Factor           float64
	ContributorScore float64 // in [0,1]
	RatingCount      int
}

// Output holds the complete result of one batch fit. A fit either
// completes for every note or fails as a whole; there is no partial output.
type Output struct {
	GlobalIntercept float64
	Notes           map[string]NoteResult
	Raters          map[string]RaterResult
	Epochs          int
}

// Run fits the factorization over the supplied tables. The context is
// checked every epoch, so a wall-clock deadline on ctx bounds the whole
// computation; on expiry the fit is abandoned and an error returned.
func Run(ctx context.Context, ratings records.RatingTable, history records.NoteStatusHistoryTable, enrollment records.UserEnrollmentTable, p Params) (*Output, error) {
	if p.Epochs <= 0 {
		p.Epochs = defaultEpochs
	}
	if p.LearningRate <= 0 {
		p.LearningRate = defaultLearningRate
	}
	if p.Regularization <= 0 {
		p.Regularization = defaultRegularization
	}

	noteIdx := make(map[string]int, len(history.Rows))
	for _, row := range history.Rows {
		if _, ok := noteIdx[row.NoteID]; !ok {
			noteIdx[row.NoteID] = len(noteIdx)
		}
	}
	raterIdx := make(map[string]int, len(enrollment.Rows))
	for _, row := range enrollment.Rows {
		if _, ok := raterIdx[row.ParticipantID]; !ok {
			raterIdx[row.ParticipantID] = len(raterIdx)
		}
	}

	// Only ratings whose note and rater are both modeled enter the fit.
	type obs struct {
		note, rater int
		value       float64
	}
	fit := make([]obs, 0, len(ratings.Rows))
	noteRatings := make([]int, len(noteIdx))
	raterRatings := make([]int, len(raterIdx))
	mu := 0.0
	for _, row := range ratings.Rows {
		ni, nok := noteIdx[row.NoteID]
		ri, rok := raterIdx[row.RaterParticipantID]
		if !nok || !rok {
			continue
		}
		fit = append(fit, obs{note: ni, rater: ri, value: row.HelpfulNum})
		noteRatings[ni]++
		raterRatings[ri]++
		mu += row.HelpfulNum
	}
	if len(fit) > 0 {
		mu /= float64(len(fit))
	}

	rng := rand.New(rand.NewSource(p.Seed)) //nolint:gosec // deterministic seed for reproducible fits
	noteBias := make([]float64, len(noteIdx))
	raterBias := make([]float64, len(raterIdx))
	noteFactor := make([]float64, len(noteIdx))
	raterFactor := make([]float64, len(raterIdx))
	for i := range noteFactor {
		noteFactor[i] = (rng.Float64() - 0.5) * 0.1
	}
	for i := range raterFactor {
		raterFactor[i] = (rng.Float64() - 0.5) * 0.1
	}

	epochs := 0
	for epoch := 0; epoch < p.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matrix factorization aborted at epoch %d: %w", epoch, err)
		}
		for _, o := range fit {
			pred := mu + noteBias[o.note] + raterBias[o.rater] + noteFactor[o.note]*raterFactor[o.rater]
			e := o.value - pred

			nb, rb := noteBias[o.note], raterBias[o.rater]
			nf, rf := noteFactor[o.note], raterFactor[o.rater]

			noteBias[o.note] = nb + p.LearningRate*(e-p.Regularization*nb)
			raterBias[o.rater] = rb + p.LearningRate*(e-p.Regularization*rb)
			noteFactor[o.note] = nf + p.LearningRate*(e*rf-p.Regularization*nf)
			raterFactor[o.rater] = rf + p.LearningRate*(e*nf-p.Regularization*rf)
		}
		epochs++
	}

	out := &Output{
		GlobalIntercept: mu,
		Notes:           make(map[string]NoteResult, len(noteIdx)),
		Raters:          make(map[string]RaterResult, len(raterIdx)),
		Epochs:          epochs,
	}
	for id, i := range noteIdx {
		out.Notes[id] = NoteResult{
			NoteID:      id,
			Intercept:   noteBias[i],
			Factor:      noteFactor[i],
			Score:       clamp01(mu + noteBias[i]),
			Status:      noteStatus(noteBias[i], noteFactor[i], noteRatings[i]),
			RatingCount: noteRatings[i],
		}
	}
	for id, i := range raterIdx {
		out.Raters[id] = RaterResult{
			ParticipantID:    id,
			Intercept:        raterBias[i],
			Factor:           raterFactor[i],
			ContributorScore: clamp01(mu + raterBias[i]),
			RatingCount:      raterRatings[i],
		}
	}
	return out, nil
}

// noteStatus derives the consensus status from the fitted parameters.
func noteStatus(intercept, factor float64, ratingCount int) string {
	if ratingCount < minRatersForStatus {
		return string(model.StatusNeedsMoreRatings)
	}
	if intercept >= crhThreshold {
		return string(model.StatusCurrentlyRatedHelpful)
	}
	if intercept <= crnhIntercept-crnhFactorPenalty*math.Abs(factor) {
		return string(model.StatusCurrentlyRatedNotHelpful)
	}
	return string(model.StatusNeedsMoreRatings)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
