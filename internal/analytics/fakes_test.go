package analytics

import (
	"context"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

type fakeSource struct {
	snapshots map[int64]*matching.Snapshot
	loads     int
}

func (s *fakeSource) LoadSnapshot(ctx context.Context, userID int64, since time.Time) (*matching.Snapshot, error) {
	s.loads++
	snapshot, ok := s.snapshots[userID]
	if !ok {
		return nil, matching.ErrUserNotFound
	}
	return snapshot, nil
}

type fakeRepository struct {
	milestones map[int64]*Milestones
}

func (r *fakeRepository) GetMilestones(ctx context.Context, userID int64) (*Milestones, error) {
	if m, ok := r.milestones[userID]; ok {
		return m, nil
	}
	return &Milestones{}, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func completeProfile(userID int64) *matching.Profile {
	dob := time.Date(1995, 3, 1, 0, 0, 0, 0, time.UTC)
	return &matching.Profile{
		UserID:             userID,
		Bio:                strPtr("hiking and jazz"),
		DateOfBirth:        &dob,
		Gender:             strPtr("Female"),
		LookingFor:         strPtr("Friendship"),
		RelationshipStatus: strPtr("Single"),
		Location:           strPtr("Lagos"),
		Latitude:           floatPtr(6.52),
		Longitude:          floatPtr(3.37),
		HasPrimaryPhoto:    true,
		Interests:          []string{"hiking"},
		IsActive:           true,
	}
}

func conversation(id int64, messages int) matching.Conversation {
	c := matching.Conversation{ID: id}
	for i := 0; i < messages; i++ {
		c.Messages = append(c.Messages, matching.Message{ConversationID: id})
	}
	return c
}

func engagedSnapshot(userID int64, registered time.Time) *matching.Snapshot {
	return &matching.Snapshot{
		User:           &matching.User{ID: userID, Email: "u@example.com", IsVerified: true, CreatedAt: registered},
		Profile:        completeProfile(userID),
		Conversations:  []matching.Conversation{conversation(1, 10), conversation(2, 30)},
		Likes:          20,
		Passes:         10,
		TotalMatches:   4,
		ActiveMatches:  2,
		RecentSwipes:   25,
		RecentMessages: 25,
	}
}
