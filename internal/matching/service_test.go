package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/events"
)

func newTestService(t *testing.T) (Service, *memoryRepository, *recordingPublisher) {
	t.Helper()
	repo := newMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, nil, pub, ServiceConfig{}, logger.NewTestLogger(t))
	return svc, repo, pub
}

func datingProfile(age, minAge, maxAge int, interests, values []string) *Profile {
	dob := time.Now().AddDate(-age, 0, -1)
	return &Profile{
		DateOfBirth: &dob,
		Gender:      strPtr("Female"),
		LookingFor:  strPtr("Friendship"),
		MinAge:      minAge,
		MaxAge:      maxAge,
		MaxDistance: 50,
		Interests:   interests,
		Values:      values,
		IsActive:    true,
	}
}

func TestVectorBuildsAndPersistsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	repo.addUser(1, datingProfile(30, 25, 35, []string{"music"}, nil))

	v, err := svc.Vector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 30, v.Demographics.Age)
	assert.Equal(t, 1, repo.saves)

	_, err = svc.Vector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.saves)
}

func TestVectorRebuildsInvalidStoredCopy(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	repo.addUser(1, nil)
	repo.vectors[1] = &FeatureVector{UserID: 1, TrustScore: 3}

	v, err := svc.Vector(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v.TrustScore, 1e-9)
}

func TestVectorUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Vector(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshPublishesUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newTestService(t)
	repo.addUser(1, nil)

	_, err := svc.Refresh(ctx, 1)
	require.NoError(t, err)

	updates := pub.ofType(events.FeatureVectorUpdated)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(1), updates[0].Payload["user_id"])
	assert.Contains(t, repo.vectors, int64(1))
}

func TestRefreshSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newTestService(t)
	repo.addUser(1, nil)
	pub.fail = true

	_, err := svc.Refresh(ctx, 1)
	assert.NoError(t, err)
}

func TestRefreshStale(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	repo.addUser(1, nil)
	repo.addUser(2, nil)
	repo.vectors[2] = &FeatureVector{UserID: 2, ComputedAt: time.Now()}

	n, err := svc.RefreshStale(ctx, time.Now().Add(-time.Hour), 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCompatibility(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	repo.addUser(1, datingProfile(30, 25, 35, []string{"music"}, nil))
	repo.addUser(2, datingProfile(32, 28, 40, []string{"music"}, nil))

	score, err := svc.Compatibility(ctx, 1, 2)
	require.NoError(t, err)

	c, ok := score.Component(ComponentPreferenceAlignment)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.Score, 1e-9)
	assert.Contains(t, score.Reasons, "Shared interests: music")

	_, err = svc.Compatibility(ctx, 1, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGenerateSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newTestService(t)
	repo.addUser(1, datingProfile(30, 25, 35, []string{"music", "travel"}, []string{"family"}))
	repo.addUser(2, datingProfile(31, 25, 35, []string{"music", "travel"}, []string{"family"}))
	repo.addUser(3, datingProfile(60, 55, 70, []string{"golf"}, []string{"career"}))
	repo.addUser(4, datingProfile(29, 25, 35, []string{"music", "travel"}, []string{"family"}))
	repo.swiped[1] = map[int64]bool{4: true}

	suggestions, err := svc.GenerateSuggestions(ctx, 1)
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(2), suggestions[0].UserID)
	assert.Greater(t, suggestions[0].Score, 0.6)
	assert.Len(t, suggestions[0].Reasons, 3)

	generated := pub.ofType(events.MatchSuggestionsGenerated)
	require.Len(t, generated, 1)
	assert.Equal(t, 2, generated[0].Payload["total_candidates"])
}

func TestRequestSuggestions(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub := newTestService(t)
	repo.addUser(1, nil)

	id, err := svc.RequestSuggestions(ctx, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, pub.ofType(events.MatchSuggestionRequested), 1)

	pub.fail = true
	_, err = svc.RequestSuggestions(ctx, 1)
	assert.Error(t, err)
}
