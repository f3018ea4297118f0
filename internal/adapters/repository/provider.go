// Package repository defines the read-only data provider boundary and its
// adapters. The scoring engine consumes exactly three read operations per
// community and never writes through this boundary.
package repository

import (
	"context"

	"github.com/clearnote/notescore/internal/domain/model"
)

// CommunityDataProvider is the sole boundary between the scoring engine
// and note storage. Each method returns one consistent snapshot slice
// sufficient for a single synchronous pass; the engine does not stream or
// page, and does not assume the data remains valid beyond one invocation.
type CommunityDataProvider interface {
	// GetAllNotes returns every note of the community.
	GetAllNotes(ctx context.Context, communityID string) ([]model.Note, error)

	// GetAllRatings returns every rating of the community.
	GetAllRatings(ctx context.Context, communityID string) ([]model.Rating, error)

	// GetAllParticipants returns every participant id of the community.
	GetAllParticipants(ctx context.Context, communityID string) ([]string, error)
}

// Snapshot fetches all three slices from a provider into one snapshot.
func Snapshot(ctx context.Context, p CommunityDataProvider, communityID string) (model.Snapshot, error) {
	notes, err := p.GetAllNotes(ctx, communityID)
	if err != nil {
		return model.Snapshot{}, err
	}
	ratings, err := p.GetAllRatings(ctx, communityID)
	if err != nil {
		return model.Snapshot{}, err
	}
	participants, err := p.GetAllParticipants(ctx, communityID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{
		CommunityID:  communityID,
		Notes:        notes,
		Ratings:      ratings,
		Participants: participants,
	}, nil
}
