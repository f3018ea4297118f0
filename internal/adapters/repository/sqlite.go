package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/clearnote/notescore/internal/domain/model"
	"github.com/clearnote/notescore/pkg/metrics"
)

// SQLiteOption applies a configuration option to the SQLiteProvider.
type SQLiteOption func(*SQLiteProvider)

// WithBusyTimeout sets the sqlite busy timeout applied at open.
func WithBusyTimeout(d time.Duration) SQLiteOption {
	return func(p *SQLiteProvider) {
		if d > 0 {
			p.busyTimeout = d
		}
	}
}

// SQLiteProvider implements CommunityDataProvider over a sqlite database
// maintained by the external storage layer.
type SQLiteProvider struct {
	db          *sql.DB
	busyTimeout time.Duration
	closed      atomic.Bool
}

const defaultBusyTimeout = 5 * time.Second

// NewSQLiteProvider opens the database at path and verifies connectivity.
func NewSQLiteProvider(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteProvider, error) {
	p := &SQLiteProvider{busyTimeout: defaultBusyTimeout}

	for _, opt := range opts {
		opt(p)
	}

	// The driver only honors _pragma, _time_format, and _txlock DSN params;
	// the busy timeout has to travel as a pragma.
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_time_format=sqlite&_pragma=busy_timeout(%d)", path, p.busyTimeout.Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	p.db = db
	return p, nil
}

// EnsureSchema creates the provider tables when absent. The storage layer
// normally owns migrations; this exists for fixtures and local runs.
func (p *SQLiteProvider) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS notes (
	community_id          TEXT NOT NULL,
	note_id               TEXT NOT NULL,
	author_participant_id TEXT NOT NULL,
	classification        TEXT NOT NULL,
	status                TEXT NOT NULL,
	created_at_millis     INTEGER NOT NULL,
	PRIMARY KEY (community_id, note_id)
);
CREATE TABLE IF NOT EXISTS ratings (
	community_id         TEXT NOT NULL,
	note_id              TEXT NOT NULL,
	rater_participant_id TEXT NOT NULL,
	helpfulness          TEXT NOT NULL,
	created_at_millis    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS participants (
	community_id   TEXT NOT NULL,
	participant_id TEXT NOT NULL,
	PRIMARY KEY (community_id, participant_id)
);
CREATE INDEX IF NOT EXISTS idx_ratings_community ON ratings (community_id, note_id);
`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetAllNotes returns every note of the community ordered by creation time.
func (p *SQLiteProvider) GetAllNotes(ctx context.Context, communityID string) ([]model.Note, error) {
	defer p.observe(time.Now())

	if err := p.requireCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT note_id, author_participant_id, classification, status, created_at_millis
		FROM notes WHERE community_id = ? ORDER BY created_at_millis, note_id`, communityID)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var classification, status string
		var createdAt int64
		if err := rows.Scan(&n.NoteID, &n.AuthorParticipantID, &classification, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.Classification = model.NoteClassification(classification)
		n.Status = model.NoteStatus(status)
		n.CreatedAt = time.UnixMilli(createdAt).UTC()
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

// GetAllRatings returns every rating of the community ordered by creation
// time.
func (p *SQLiteProvider) GetAllRatings(ctx context.Context, communityID string) ([]model.Rating, error) {
	defer p.observe(time.Now())

	if err := p.requireCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT note_id, rater_participant_id, helpfulness, created_at_millis
		FROM ratings WHERE community_id = ? ORDER BY created_at_millis, note_id`, communityID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []model.Rating
	for rows.Next() {
		var r model.Rating
		var helpfulness string
		var createdAt int64
		if err := rows.Scan(&r.NoteID, &r.RaterParticipantID, &helpfulness, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		r.Helpfulness = model.HelpfulnessLevel(helpfulness)
		r.CreatedAt = time.UnixMilli(createdAt).UTC()
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// GetAllParticipants returns every participant id of the community.
func (p *SQLiteProvider) GetAllParticipants(ctx context.Context, communityID string) ([]string, error) {
	defer p.observe(time.Now())

	if err := p.requireCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT participant_id FROM participants
		WHERE community_id = ? ORDER BY participant_id`, communityID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return participants, nil
}

// Close releases the underlying database handle. Reads after Close fail
// with ErrProviderClosed.
func (p *SQLiteProvider) Close() error {
	p.closed.Store(true)
	return p.db.Close()
}

// requireCommunity distinguishes "unknown community" from "empty slices".
func (p *SQLiteProvider) requireCommunity(ctx context.Context, communityID string) error {
	if p.closed.Load() {
		return ErrProviderClosed
	}

	var one int
	err := p.db.QueryRowContext(ctx, `
		SELECT 1 WHERE EXISTS (SELECT 1 FROM notes WHERE community_id = ?1)
		   OR EXISTS (SELECT 1 FROM ratings WHERE community_id = ?1)
		   OR EXISTS (SELECT 1 FROM participants WHERE community_id = ?1)`, communityID).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", ErrCommunityNotFound, communityID)
	}
	if err != nil {
		return fmt.Errorf("check community: %w", err)
	}
	return nil
}

func (p *SQLiteProvider) observe(start time.Time) {
	metrics.ObserveProviderQueryDuration(float64(time.Since(start).Milliseconds()))
}
