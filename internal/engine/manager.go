// Package engine composes the tier registry, validator, scorer factory,
// and data provider into the single scoring entry point external callers
// use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clearnote/notescore/internal/adapters/repository"
	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/internal/domain/scoring"
	"github.com/clearnote/notescore/internal/domain/tier"
	"github.com/clearnote/notescore/internal/domain/trigger"
	"github.com/clearnote/notescore/internal/domain/validate"
	_ "github.com/clearnote/notescore/internal/mf" // registers the MF scorer lineup
	"github.com/clearnote/notescore/pkg/logger"
	"github.com/clearnote/notescore/pkg/metrics"
)

// Default manager configuration constants.
const (
	defaultMFDeadline = 30 * time.Second
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithMFDeadline bounds the wall-clock time of each batch scorer run.
func WithMFDeadline(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.mfDeadline = d
		}
	}
}

// WithTrigger sets a custom batch scoring trigger.
func WithTrigger(t *trigger.BatchTrigger) Option {
	return func(m *Manager) {
		if t != nil {
			m.trigger = t
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Report is the output of one scoring pass: the uniform per-note results
// plus the tier metadata downstream display and telemetry consume.
type Report struct {
	RunID              string
	CommunityID        string
	Tier               tier.ScoringTier
	TierName           string
	ScorersUsed        []string
	ConfidenceWarnings bool
	NoteCount          int
	RatingCount        int
	ParticipantCount   int
	Results            []scoring.Result
	BatchStatus        trigger.Status
	Elapsed            time.Duration
}

// Manager is the adaptive tier orchestrator. It retains no state between
// invocations: the tier is recomputed from the note count on every pass,
// so tier movement in either direction needs no stored transitions.
type Manager struct {
	provider   repository.CommunityDataProvider
	trigger    *trigger.BatchTrigger
	mfDeadline time.Duration
	logger     logger.Logger
}

// New creates a Manager over the given data provider.
func New(provider repository.CommunityDataProvider, opts ...Option) *Manager {
	m := &Manager{
		provider:   provider,
		trigger:    trigger.New(),
		mfDeadline: defaultMFDeadline,
		logger:     logger.Named("engine"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ScoreCommunity runs one full scoring pass for a community: snapshot,
// validation, tier resolution, scorer execution, uniform results. A
// failure anywhere aborts the whole pass; no per-note errors are swallowed
// because the batch algorithms compute interdependent scores.
func (m *Manager) ScoreCommunity(ctx context.Context, communityID string) (*Report, error) {
	start := time.Now()

	snap, err := repository.Snapshot(ctx, m.provider, communityID)
	if err != nil {
		metrics.RecordScoringError()
		return nil, fmt.Errorf("fetch snapshot for %s: %w", communityID, err)
	}

	if v := validate.Check(snap); !v.IsValid {
		metrics.RecordValidationFailure()
		metrics.RecordScoringError()
		return nil, fmt.Errorf("%w: %s", validate.ErrInvalidSnapshot, strings.Join(v.Reasons, "; "))
	}

	noteCount := snap.NoteCount()
	resolved := tier.ForNoteCount(noteCount)
	cfg := tier.ConfigFor(resolved)

	m.logger.Info(ctx, "scoring community",
		logger.String("communityID", communityID),
		logger.String("tier", resolved.String()),
		logger.Int("notes", noteCount),
		logger.Int("ratings", len(snap.Ratings)),
	)

	collected := make(map[string]scoring.Result, noteCount)
	for _, name := range cfg.Scorers {
		scorer, err := scoring.Create(name)
		if err != nil {
			metrics.RecordScoringError()
			return nil, err
		}
		if err := m.runScorer(ctx, scorer, snap, collected); err != nil {
			metrics.RecordScoringError()
			return nil, err
		}
	}

	results := make([]scoring.Result, 0, len(collected))
	for _, note := range snap.Notes {
		res, ok := collected[note.NoteID]
		if !ok {
			continue
		}
		if cfg.ConfidenceWarnings {
			res.Metadata["confidenceWarning"] = true
		}
		results = append(results, res)
	}

	elapsed := time.Since(start)
	metrics.RecordScoringRun(resolved.String())
	metrics.ObserveScoringRunDuration(float64(elapsed.Milliseconds()))
	metrics.AddNotesScored(len(results))

	m.logger.Info(ctx, "scoring pass complete",
		logger.String("communityID", communityID),
		logger.Int("results", len(results)),
		logger.Float64("elapsedMS", float64(elapsed.Milliseconds())),
	)

	return &Report{
		RunID:              uuid.NewString(),
		CommunityID:        communityID,
		Tier:               resolved,
		TierName:           resolved.String(),
		ScorersUsed:        cfg.Scorers,
		ConfidenceWarnings: cfg.ConfidenceWarnings,
		NoteCount:          noteCount,
		RatingCount:        len(snap.Ratings),
		ParticipantCount:   len(snap.Participants),
		Results:            results,
		BatchStatus:        m.trigger.GetStatus(noteCount),
		Elapsed:            elapsed,
	}, nil
}

// runScorer executes one scorer over the snapshot and merges its results.
// Earlier scorers in the tier lineup take precedence; later ones only fill
// notes the earlier ones left unscored.
func (m *Manager) runScorer(ctx context.Context, scorer scoring.Scorer, snap model.Snapshot, collected map[string]scoring.Result) error {
	if batch, ok := scorer.(scoring.BatchScorer); ok {
		ctx, cancel := context.WithTimeout(ctx, m.mfDeadline)
		defer cancel()

		results, err := batch.ScoreBatch(ctx, snap)
		if err != nil {
			if errors.Is(err, scoring.ErrScorerTimeout) {
				m.logger.Warn(ctx, "batch scorer deadline exceeded",
					logger.String("communityID", snap.CommunityID))
			}
			return err
		}
		for id, res := range results {
			if _, exists := collected[id]; !exists {
				collected[id] = res
			}
		}
		return nil
	}

	sequences := ratingSequences(snap)
	for _, note := range snap.Notes {
		if _, exists := collected[note.NoteID]; exists {
			continue
		}
		res, err := scorer.ScoreNote(ctx, note.NoteID, sequences[note.NoteID])
		if err != nil {
			return fmt.Errorf("score note %s: %w", note.NoteID, err)
		}
		collected[note.NoteID] = res
	}
	return nil
}

// CheckTransition reports whether a community first crossed the batch
// threshold between two observations, counting crossings for telemetry.
func (m *Manager) CheckTransition(previousCount, currentCount int) bool {
	crossed := m.trigger.CheckTransition(previousCount, currentCount)
	if crossed {
		metrics.RecordBatchTransition()
	}
	return crossed
}

// BatchStatus reports a community's position relative to the batch
// threshold.
func (m *Manager) BatchStatus(noteCount int) trigger.Status {
	return m.trigger.GetStatus(noteCount)
}

// ratingSequences groups each note's helpfulness values ordered by rating
// creation time.
func ratingSequences(snap model.Snapshot) map[string][]float64 {
	ordered := make([]model.Rating, len(snap.Ratings))
	copy(ordered, snap.Ratings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	sequences := make(map[string][]float64)
	for _, r := range ordered {
		sequences[r.NoteID] = append(sequences[r.NoteID], r.Helpfulness.Num())
	}
	return sequences
}
