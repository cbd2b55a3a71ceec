package dating

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logger"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

func newTestRanker(t *testing.T, repo *fakeRepository, vectors *fakeVectors, seed int64) *Ranker {
	t.Helper()
	return NewRanker(repo, vectors, vectors, RankerConfig{Limit: 10, PoolSize: 50, Seed: seed}, logger.NewTestLogger(t))
}

func ids(ranked []*RankedCandidate) []int64 {
	out := make([]int64, len(ranked))
	for i, r := range ranked {
		out[i] = r.CandidateID
	}
	return out
}

func TestSortRankedBoostedTieBreak(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		ranked := []*RankedCandidate{
			{CandidateID: 3, Score: 0.4},
			{CandidateID: 2, Score: 0.4, Boosted: true},
			{CandidateID: 1, Score: 0.9},
		}
		if seed%2 == 0 {
			ranked[0], ranked[1] = ranked[1], ranked[0]
		}

		sortRanked(ranked)

		assert.Equal(t, []int64{1, 2, 3}, ids(ranked))
	}
}

func TestRecommendUnknownUser(t *testing.T) {
	r := newTestRanker(t, newFakeRepository(), &fakeVectors{}, 1)

	_, err := r.Recommend(context.Background(), 42, RecommendOptions{})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, IsNotFound(err))
}

func TestRecommendWithoutProfile(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	r := newTestRanker(t, repo, &fakeVectors{}, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRecommendEmptyPool(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music")
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30, "music")}}
	r := newTestRanker(t, repo, vectors, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRecommendScoresWithCosine(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music", "travel")
	repo.candidates = []*matching.Profile{
		profileAt(2, 0, 0.1, "music", "travel"),
		profileAt(3, 0, 0.2, "golf"),
		profileAt(4, 0, 0.3),
	}
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{
		1: vectorFor(1, 30, "music", "travel"),
		2: vectorFor(2, 30, "music", "travel"),
		3: vectorFor(3, 55, "golf"),
	}}
	r := newTestRanker(t, repo, vectors, 7)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, int64(2), ranked[0].CandidateID)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
	assert.Equal(t, []string{"Shared interests: music, travel"}, ranked[0].Reasons)
	require.NotNil(t, ranked[0].DistanceKM)

	var noVector *RankedCandidate
	for _, c := range ranked {
		if c.CandidateID == 4 {
			noVector = c
		}
	}
	require.NotNil(t, noVector)
	assert.Equal(t, 0.5, noVector.Score)
	assert.Equal(t, []string{"Limited profile data available"}, noVector.Reasons)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	assert.Equal(t, 18, repo.lastQuery.MinAge)
	assert.Equal(t, 100, repo.lastQuery.MaxAge)
}

func TestRecommendExplain(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music")
	repo.candidates = []*matching.Profile{profileAt(2, 0, 0.1, "music")}
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{
		1: vectorFor(1, 30, "music"),
		2: vectorFor(2, 31, "music"),
	}}
	r := newTestRanker(t, repo, vectors, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{Explain: true})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	require.NotNil(t, ranked[0].Match)
	assert.Len(t, ranked[0].Match.Components, 6)
	assert.Len(t, ranked[0].Reasons, 3)
	assert.Equal(t, "Age preferences are mutually compatible", ranked[0].Reasons[0])
	assert.InDelta(t, ranked[0].Match.Score, ranked[0].Score, 1e-9)
}

func TestRecommendDefaultsInvalidCandidateVector(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music")
	repo.candidates = []*matching.Profile{profileAt(2, 0, 0.1, "music")}
	broken := vectorFor(2, 30, "music")
	broken.TrustScore = 4
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30, "music"), 2: broken}}
	r := newTestRanker(t, repo, vectors, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{Explain: true})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.5, ranked[0].Score)
}

func TestRecommendIncludesSwipedWhenNothingElse(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music")
	repo.candidates = []*matching.Profile{profileAt(2, 0, 0.1), profileAt(3, 0, 0.1)}
	repo.swiped = map[int64]bool{2: true, 3: true}
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30, "music")}}
	r := newTestRanker(t, repo, vectors, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{2, 3}, ids(ranked))

	repo.candidates = append(repo.candidates, profileAt(4, 0, 0.1))
	ranked, err = r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids(ranked))
}

func TestRecommendScansPastSwipedAndDistantRows(t *testing.T) {
	tests := []struct {
		name  string
		setup func(repo *fakeRepository)
	}{
		{
			name: "swiped rows excluded before the limit",
			setup: func(repo *fakeRepository) {
				for id := int64(2); id <= 12; id++ {
					repo.candidates = append(repo.candidates, profileAt(id, 0, 0.1))
					if id < 12 {
						repo.swiped[id] = true
					}
				}
			},
		},
		{
			name: "distant rows excluded before the limit",
			setup: func(repo *fakeRepository) {
				for id := int64(2); id <= 11; id++ {
					repo.candidates = append(repo.candidates, profileAt(id, 0, 20))
				}
				repo.candidates = append(repo.candidates, profileAt(12, 0, 0.1))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepository()
			repo.known[1] = true
			repo.requesters[1] = profileAt(1, 0, 0, "music")
			tt.setup(repo)
			vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30, "music")}}
			r := NewRanker(repo, vectors, vectors, RankerConfig{Limit: 10, PoolSize: 5, ScanLimit: 10, Seed: 1}, logger.NewTestLogger(t))

			ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
			require.NoError(t, err)
			assert.Equal(t, []int64{12}, ids(ranked))
			assert.Equal(t, 1, repo.queries)
			assert.True(t, repo.lastQuery.ExcludeSwiped)
			require.NotNil(t, repo.lastQuery.Box)
			assert.Equal(t, 10, repo.lastQuery.Limit)
		})
	}
}

func TestRecommendCountryScopeWithoutLocation(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = &matching.Profile{UserID: 1, Country: strPtr("Nigeria"), IsActive: true}
	local := profileAt(2, 6.5, 3.4)
	local.Country = strPtr("nigeria")
	abroad := profileAt(3, 5.6, -0.2)
	abroad.Country = strPtr("Ghana")
	repo.candidates = []*matching.Profile{local, abroad}
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30)}}
	r := newTestRanker(t, repo, vectors, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(ranked))
	assert.Nil(t, repo.lastQuery.Box)
	assert.Equal(t, "Nigeria", repo.lastQuery.Country)
}

func TestRecommendFallbackForTrivialVector(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music", "travel")
	repo.candidates = []*matching.Profile{
		profileAt(2, 0, 0.1, "music"),
		profileAt(3, 0, 0.1, "music", "travel"),
		boostedProfile(profileAt(4, 0, 0.1)),
		profileAt(5, 0, 0.1, "golf"),
	}
	trivial := &matching.FeatureVector{UserID: 1, Interests: []string{}, Values: []string{}}
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: trivial}}
	r := newTestRanker(t, repo, vectors, 3)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	require.Len(t, ranked, 4)

	assert.Equal(t, []int64{4, 3, 2, 5}, ids(ranked))
	assert.True(t, ranked[0].Boosted)
	assert.Equal(t, []string{"Recommended for you"}, ranked[0].Reasons)
	assert.Equal(t, []string{"Shared interests: music, travel"}, ranked[1].Reasons)
}

func TestRecommendFallbackWhenVectorFails(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0)
	repo.candidates = []*matching.Profile{profileAt(2, 0, 0.1)}
	r := newTestRanker(t, repo, &fakeVectors{err: errors.New("db down")}, 1)

	ranked, err := r.Recommend(context.Background(), 1, RecommendOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(ranked))
}

func TestRecommendDeterministicForSeedAndLimit(t *testing.T) {
	repo := newFakeRepository()
	repo.known[1] = true
	repo.requesters[1] = profileAt(1, 0, 0, "music")
	vectors := &fakeVectors{vectors: map[int64]*matching.FeatureVector{1: vectorFor(1, 30, "music")}}
	for id := int64(2); id < 30; id++ {
		repo.candidates = append(repo.candidates, profileAt(id, 0, 0.1))
	}

	first, err := newTestRanker(t, repo, vectors, 11).Recommend(context.Background(), 1, RecommendOptions{Limit: 5})
	require.NoError(t, err)
	second, err := newTestRanker(t, repo, vectors, 11).Recommend(context.Background(), 1, RecommendOptions{Limit: 5})
	require.NoError(t, err)

	assert.Len(t, first, 5)
	assert.Equal(t, ids(first), ids(second))
}
