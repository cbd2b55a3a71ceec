package analytics

import (
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

// Journey stages in the order a user normally moves through them
const (
	StageProfileSetup = "profile_setup"
	StageExploration  = "exploration"
	StageMatching     = "matching"
	StageConversation = "conversation"
	StageEngaged      = "engaged"
)

const (
	setupCompletionThreshold = 50
	explorationSwipes        = 10
	activeSwipeCap           = 50.0
	conversationDepthCap     = 20.0
	engagementActivityCap    = 100.0
)

// Milestones are facts the matching snapshot does not carry
type Milestones struct {
	ActiveConversations int        `db:"active_conversations"`
	FirstMatchAt        *time.Time `db:"first_match_at"`
}

// Activity combines everything the journey and success scores read
type Activity struct {
	Snapshot   *matching.Snapshot
	Milestones *Milestones
}

func (a Activity) TotalSwipes() int {
	return a.Snapshot.Likes + a.Snapshot.Passes + a.Snapshot.SuperLikes
}

func (a Activity) Completion() int {
	return matching.CompletionScore(a.Snapshot.User, a.Snapshot.Profile)
}

// AverageConversationDepth is the mean message count over the user's conversations
func (a Activity) AverageConversationDepth() float64 {
	convs := a.Snapshot.Conversations
	if len(convs) == 0 {
		return 0
	}
	total := 0
	for _, c := range convs {
		total += len(c.Messages)
	}
	return float64(total) / float64(len(convs))
}

type Journey struct {
	UserID            int64     `json:"user_id"`
	RegisteredAt      time.Time `json:"registered_at"`
	Stage             string    `json:"journey_stage"`
	ProfileCompletion int       `json:"profile_completion"`
	SuccessScore      float64   `json:"success_score"`
	EngagementScore   float64   `json:"engagement_score"`
	DaysToFirstMatch  *int      `json:"time_to_first_match"`
	ComputedAt        time.Time `json:"computed_at"`
}
