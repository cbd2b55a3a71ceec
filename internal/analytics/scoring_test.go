package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

func TestStage(t *testing.T) {
	registered := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(s *matching.Snapshot, m *Milestones)
		want   string
	}{
		{name: "no profile", mutate: func(s *matching.Snapshot, m *Milestones) { s.Profile = nil }, want: StageProfileSetup},
		{name: "thin profile", mutate: func(s *matching.Snapshot, m *Milestones) {
			s.Profile = &matching.Profile{IsActive: true}
		}, want: StageProfileSetup},
		{name: "few swipes", mutate: func(s *matching.Snapshot, m *Milestones) { s.Likes, s.Passes = 5, 4 }, want: StageExploration},
		{name: "no matches", mutate: func(s *matching.Snapshot, m *Milestones) { s.TotalMatches, s.ActiveMatches = 0, 0 }, want: StageMatching},
		{name: "no active conversation", mutate: func(s *matching.Snapshot, m *Milestones) { m.ActiveConversations = 0 }, want: StageConversation},
		{name: "engaged", mutate: func(s *matching.Snapshot, m *Milestones) {}, want: StageEngaged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := engagedSnapshot(1, registered)
			milestones := &Milestones{ActiveConversations: 1}
			tt.mutate(snapshot, milestones)
			assert.Equal(t, tt.want, Stage(Activity{Snapshot: snapshot, Milestones: milestones}))
		})
	}
}

func TestSuccessAndEngagementScores(t *testing.T) {
	activity := Activity{
		Snapshot:   engagedSnapshot(1, time.Now()),
		Milestones: &Milestones{ActiveConversations: 2},
	}

	assert.Equal(t, 100, activity.Completion())
	assert.InDelta(t, 20.0, activity.AverageConversationDepth(), 1e-9)

	// 20 completion + 10 swipes + 15 matches + 30 conversations
	assert.InDelta(t, 75.0, SuccessScore(activity), 1e-9)
	assert.InDelta(t, 62.5, EngagementScore(activity), 1e-9)
}

func TestSuccessScoreWithoutActivity(t *testing.T) {
	activity := Activity{
		Snapshot:   &matching.Snapshot{User: &matching.User{ID: 1}},
		Milestones: &Milestones{},
	}
	assert.Zero(t, SuccessScore(activity))
	assert.Zero(t, EngagementScore(activity))
	assert.Nil(t, DaysToFirstMatch(activity))
}

func TestDaysToFirstMatch(t *testing.T) {
	registered := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	firstMatch := time.Date(2024, 1, 4, 1, 0, 0, 0, time.UTC)

	days := DaysToFirstMatch(Activity{
		Snapshot:   &matching.Snapshot{User: &matching.User{CreatedAt: registered}},
		Milestones: &Milestones{FirstMatchAt: &firstMatch},
	})
	require.NotNil(t, days)
	assert.Equal(t, 3, *days)
}
