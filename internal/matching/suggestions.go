package matching

import (
	"context"
	"sort"

	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

// Suggestion is one proposed match for a user
type Suggestion struct {
	UserID  int64    `json:"user_id"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// GenerateSuggestions scores users the requester has not swiped on and
// publishes the ones above the threshold
func (s *service) GenerateSuggestions(ctx context.Context, userID int64) ([]Suggestion, error) {
	requester, err := s.Vector(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidateIDs, err := s.repo.UnswipedUserIDs(ctx, userID, s.cfg.SuggestionPoolSize)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(candidateIDs))
	for _, candidateID := range candidateIDs {
		candidate, err := s.Vector(ctx, candidateID)
		if err != nil {
			s.logger.Warn("skipping suggestion candidate", map[string]interface{}{
				"user_id":      userID,
				"candidate_id": candidateID,
				"error":        err.Error(),
			})
			continue
		}

		match := s.matcher.Score(requester, candidate)
		if match.Score <= s.cfg.SuggestionThreshold {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			UserID:  candidateID,
			Score:   match.Score,
			Reasons: match.TopReasons(3),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.cfg.SuggestionLimit {
		suggestions = suggestions[:s.cfg.SuggestionLimit]
	}
	recordSuggestions(len(suggestions))

	s.publisher.PublishBestEffort(ctx, events.MatchSuggestionsGenerated, map[string]interface{}{
		"user_id":          userID,
		"suggestions":      suggestions,
		"total_candidates": len(candidateIDs),
	}, events.WithActor(userID))

	return suggestions, nil
}
