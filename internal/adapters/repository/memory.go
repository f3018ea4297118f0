package repository

import (
	"context"
	"sync"

	"github.com/clearnote/notescore/internal/domain/model"
)

// MemoryOption applies a configuration option to the MemoryProvider.
type MemoryOption func(*MemoryProvider)

// WithCommunity seeds a community's data at construction time.
func WithCommunity(communityID string, notes []model.Note, ratings []model.Rating, participants []string) MemoryOption {
	return func(p *MemoryProvider) {
		p.communities[communityID] = &communityData{
			notes:        append([]model.Note(nil), notes...),
			ratings:      append([]model.Rating(nil), ratings...),
			participants: append([]string(nil), participants...),
		}
	}
}

type communityData struct {
	notes        []model.Note
	ratings      []model.Rating
	participants []string
}

// MemoryProvider implements CommunityDataProvider over in-process maps.
// It backs tests and local fixtures; production callers use the SQLite
// adapter or their own implementation of the boundary.
type MemoryProvider struct {
	mu          sync.RWMutex
	communities map[string]*communityData
}

// NewMemoryProvider creates an in-memory provider with options.
func NewMemoryProvider(opts ...MemoryOption) *MemoryProvider {
	p := &MemoryProvider{communities: make(map[string]*communityData)}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AddNote appends a note to the community, creating the community if
// needed. The author is tracked as a participant.
func (p *MemoryProvider) AddNote(communityID string, note model.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.community(communityID)
	c.notes = append(c.notes, note)
	c.addParticipant(note.AuthorParticipantID)
}

// AddRating appends a rating to the community. The rater is tracked as a
// participant.
func (p *MemoryProvider) AddRating(communityID string, rating model.Rating) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.community(communityID)
	c.ratings = append(c.ratings, rating)
	c.addParticipant(rating.RaterParticipantID)
}

// GetAllNotes returns a copy of the community's notes.
func (p *MemoryProvider) GetAllNotes(ctx context.Context, communityID string) ([]model.Note, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, err := p.lookup(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return append([]model.Note(nil), c.notes...), nil
}

// GetAllRatings returns a copy of the community's ratings.
func (p *MemoryProvider) GetAllRatings(ctx context.Context, communityID string) ([]model.Rating, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, err := p.lookup(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return append([]model.Rating(nil), c.ratings...), nil
}

// GetAllParticipants returns a copy of the community's participant ids.
func (p *MemoryProvider) GetAllParticipants(ctx context.Context, communityID string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, err := p.lookup(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.participants...), nil
}

func (p *MemoryProvider) community(communityID string) *communityData {
	c, ok := p.communities[communityID]
	if !ok {
		c = &communityData{}
		p.communities[communityID] = c
	}
	return c
}

func (p *MemoryProvider) lookup(ctx context.Context, communityID string) (*communityData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := p.communities[communityID]
	if !ok {
		return nil, ErrCommunityNotFound
	}
	return c, nil
}

func (c *communityData) addParticipant(id string) {
	for _, existing := range c.participants {
		if existing == id {
			return
		}
	}
	c.participants = append(c.participants, id)
}
