package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

// Publisher is the part of the event bus this package emits on
type Publisher interface {
	PublishBestEffort(ctx context.Context, eventType events.EventType, payload map[string]interface{}, opts ...events.Option) string
}

// invalidator is implemented by vector stores that keep a cache
type invalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

type Service interface {
	// Vector returns the stored vector, building and persisting it when absent
	Vector(ctx context.Context, userID int64) (*FeatureVector, error)
	Refresh(ctx context.Context, userID int64) (*FeatureVector, error)
	RefreshStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
	Compatibility(ctx context.Context, userID, otherID int64) (*MatchScore, error)
	RequestSuggestions(ctx context.Context, userID int64) (string, error)
	GenerateSuggestions(ctx context.Context, userID int64) ([]Suggestion, error)
}

// ServiceConfig tunes suggestion generation
type ServiceConfig struct {
	SuggestionThreshold float64
	SuggestionLimit     int
	SuggestionPoolSize  int
}

type service struct {
	builder   *Builder
	matcher   *Matcher
	vectors   VectorStore
	repo      Repository
	publisher Publisher
	cfg       ServiceConfig
	logger    logger.Logger
}

func NewService(repo Repository, vectors VectorStore, publisher Publisher, cfg ServiceConfig, log logger.Logger) Service {
	if vectors == nil {
		vectors = repo
	}
	if cfg.SuggestionThreshold <= 0 {
		cfg.SuggestionThreshold = 0.6
	}
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 10
	}
	if cfg.SuggestionPoolSize <= 0 {
		cfg.SuggestionPoolSize = 50
	}
	return &service{
		builder:   NewBuilder(repo),
		matcher:   NewMatcher(),
		vectors:   vectors,
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (s *service) Vector(ctx context.Context, userID int64) (*FeatureVector, error) {
	vector, err := s.vectors.GetVector(ctx, userID)
	switch {
	case err == nil:
		verr := vector.Validate()
		if verr == nil {
			return vector, nil
		}
		s.logger.Warn("stored vector invalid, rebuilding", map[string]interface{}{"user_id": userID, "error": verr.Error()})
	case !errors.Is(err, ErrVectorNotFound):
		return nil, err
	}

	vector, err = s.builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.vectors.SaveVector(ctx, vector); err != nil {
		s.logger.Warn("failed to persist built vector", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
	return vector, nil
}

// Refresh rebuilds and stores the vector. A failed refresh drops any cached
// copy so readers stop seeing the outdated vector.
func (s *service) Refresh(ctx context.Context, userID int64) (*FeatureVector, error) {
	vector, err := s.builder.Build(ctx, userID)
	if err != nil {
		recordRefreshFailure()
		s.invalidate(ctx, userID)
		return nil, err
	}
	if err := s.vectors.SaveVector(ctx, vector); err != nil {
		recordRefreshFailure()
		s.invalidate(ctx, userID)
		return nil, err
	}

	s.publisher.PublishBestEffort(ctx, events.FeatureVectorUpdated, map[string]interface{}{
		"user_id":          userID,
		"trust_score":      vector.TrustScore,
		"engagement_score": vector.EngagementScore,
	}, events.WithActor(userID))

	return vector, nil
}

func (s *service) invalidate(ctx context.Context, userID int64) {
	cache, ok := s.vectors.(invalidator)
	if !ok {
		return
	}
	if err := cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("vector cache invalidation failed", map[string]interface{}{"user_id": userID, "error": err.Error()})
	}
}

func (s *service) RefreshStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	ids, err := s.repo.ListStaleUsers(ctx, olderThan, limit)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Refresh(ctx, id); err != nil {
			s.logger.Warn("stale vector refresh failed", map[string]interface{}{"user_id": id, "error": err.Error()})
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *service) Compatibility(ctx context.Context, userID, otherID int64) (*MatchScore, error) {
	a, err := s.Vector(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.Vector(ctx, otherID)
	if err != nil {
		return nil, err
	}

	score := s.matcher.Score(a, b)
	s.logger.Debug("compatibility computed", map[string]interface{}{
		"user_id":  userID,
		"other_id": otherID,
		"result":   score.Describe(),
	})
	return score, nil
}

func (s *service) RequestSuggestions(ctx context.Context, userID int64) (string, error) {
	// The requester must exist before the request is queued.
	if _, err := s.Vector(ctx, userID); err != nil {
		return "", err
	}
	id := s.publisher.PublishBestEffort(ctx, events.MatchSuggestionRequested, map[string]interface{}{
		"user_id": userID,
	}, events.WithActor(userID))
	if id == "" {
		return "", fmt.Errorf("suggestion request for user %d was not queued", userID)
	}
	return id, nil
}
