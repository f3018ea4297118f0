// Package app provides the service that external callers use to score
// communities. HTTP routing, workflow dispatch, and scheduling live
// outside this repository and call into this one entry point.
package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/clearnote/notescore/internal/adapters/repository"
	"github.com/clearnote/notescore/internal/domain/trigger"
	"github.com/clearnote/notescore/internal/engine"
	"github.com/clearnote/notescore/pkg/logger"
)

// Service wires the data provider and the tier manager together and owns
// their lifecycle.
type Service struct {
	mu sync.RWMutex

	provider repository.CommunityDataProvider
	manager  *engine.Manager

	mfDeadline       time.Duration
	triggerThreshold int

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the community data provider.
func WithProvider(p repository.CommunityDataProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.provider = p
		}
	}
}

// WithMFDeadline bounds each matrix factorization fit.
func WithMFDeadline(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.mfDeadline = d
		}
	}
}

// WithTriggerThreshold overrides the batch-eligibility note count.
func WithTriggerThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.triggerThreshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		mfDeadline:       30 * time.Second,
		triggerThreshold: trigger.DefaultThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components. Without a configured provider
// an empty in-memory provider is used.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("app")
	}
	if s.provider == nil {
		s.provider = repository.NewMemoryProvider()
		s.logger.Info(ctx, "using in-memory data provider")
	}

	s.manager = engine.New(s.provider,
		engine.WithMFDeadline(s.mfDeadline),
		engine.WithTrigger(trigger.New(trigger.WithThreshold(s.triggerThreshold))),
		engine.WithLogger(s.logger.Named("engine")),
	)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("triggerThreshold", s.triggerThreshold),
		logger.Float64("mfDeadlineMS", float64(s.mfDeadline.Milliseconds())),
	)
	return nil
}

// Stop releases the service components.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if closer, ok := s.provider.(io.Closer); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// ScoreCommunity runs one scoring pass for a community.
func (s *Service) ScoreCommunity(ctx context.Context, communityID string) (*engine.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	return s.manager.ScoreCommunity(ctx, communityID)
}

// CheckTransition reports whether a community first crossed the batch
// threshold between two note-count observations.
func (s *Service) CheckTransition(previousCount, currentCount int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return trigger.New(trigger.WithThreshold(s.triggerThreshold)).CheckTransition(previousCount, currentCount)
	}
	return s.manager.CheckTransition(previousCount, currentCount)
}

// BatchStatus reports a community's position relative to the batch
// threshold.
func (s *Service) BatchStatus(noteCount int) trigger.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return trigger.New(trigger.WithThreshold(s.triggerThreshold)).GetStatus(noteCount)
	}
	return s.manager.BatchStatus(noteCount)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":          s.started,
		"triggerThreshold": s.triggerThreshold,
		"mfDeadlineMS":     s.mfDeadline.Milliseconds(),
	}
}
