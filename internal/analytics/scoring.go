package analytics

import (
	"math"
	"time"
)

// Stage places the user on the journey
func Stage(a Activity) string {
	switch {
	case a.Snapshot.Profile == nil || a.Completion() < setupCompletionThreshold:
		return StageProfileSetup
	case a.TotalSwipes() < explorationSwipes:
		return StageExploration
	case a.Snapshot.TotalMatches == 0:
		return StageMatching
	case a.Milestones.ActiveConversations == 0:
		return StageConversation
	default:
		return StageEngaged
	}
}

// SuccessScore rates the user out of 100:
// 20 for profile completion, 20 for recent swiping, 30 for lasting matches
// and 30 for conversation depth
func SuccessScore(a Activity) float64 {
	score := float64(a.Completion()) / 100 * 20
	score += math.Min(float64(a.Snapshot.RecentSwipes)/activeSwipeCap, 1) * 20

	if a.Snapshot.TotalMatches > 0 {
		score += float64(a.Snapshot.ActiveMatches) / float64(a.Snapshot.TotalMatches) * 30
	}
	if len(a.Snapshot.Conversations) > 0 {
		score += math.Min(a.AverageConversationDepth()/conversationDepthCap, 1) * 30
	}
	return math.Min(score, 100)
}

// EngagementScore is half recent activity and half success, out of 100
func EngagementScore(a Activity) float64 {
	recent := float64(a.Snapshot.RecentSwipes + a.Snapshot.RecentMessages)
	score := math.Min(recent/engagementActivityCap, 1) * 50
	score += SuccessScore(a) / 100 * 50
	return math.Min(score, 100)
}

// DaysToFirstMatch counts calendar days from registration to the first match
func DaysToFirstMatch(a Activity) *int {
	if a.Milestones.FirstMatchAt == nil || a.Snapshot.User == nil {
		return nil
	}
	registered := a.Snapshot.User.CreatedAt.UTC().Truncate(24 * time.Hour)
	first := a.Milestones.FirstMatchAt.UTC().Truncate(24 * time.Hour)
	days := int(first.Sub(registered).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}
