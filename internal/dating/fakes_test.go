package dating

import (
	"context"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

type fakeRepository struct {
	requesters map[int64]*matching.Profile
	known      map[int64]bool
	candidates []*matching.Profile
	swiped     map[int64]bool
	lastQuery  CandidateQuery
	queries    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		requesters: make(map[int64]*matching.Profile),
		known:      make(map[int64]bool),
		swiped:     make(map[int64]bool),
	}
}

func (f *fakeRepository) GetRequester(ctx context.Context, userID int64) (*matching.Profile, error) {
	if !f.known[userID] {
		return nil, ErrUserNotFound
	}
	return f.requesters[userID], nil
}

// FindCandidates mirrors the SQL prefilters: swipe exclusion, the bounding
// box or country scope and the row limit.
func (f *fakeRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]*matching.Profile, error) {
	f.lastQuery = q
	f.queries++
	var out []*matching.Profile
	for _, p := range f.candidates {
		if q.ExcludeSwiped && f.swiped[p.UserID] {
			continue
		}
		if q.Box != nil {
			pos, ok := effectiveLocation(p)
			if !ok || pos.Lat < q.Box.MinLat || pos.Lat > q.Box.MaxLat || pos.Lon < q.Box.MinLon || pos.Lon > q.Box.MaxLon {
				continue
			}
		} else if q.Country != "" && (p.Country == nil || !strings.EqualFold(*p.Country, q.Country)) {
			continue
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepository) SwipedUserIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	return f.swiped, nil
}

type fakeVectors struct {
	vectors map[int64]*matching.FeatureVector
	err     error
}

func (f *fakeVectors) Vector(ctx context.Context, userID int64) (*matching.FeatureVector, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[userID]
	if !ok {
		return nil, matching.ErrUserNotFound
	}
	return v, nil
}

func (f *fakeVectors) GetVectors(ctx context.Context, userIDs []int64) (map[int64]*matching.FeatureVector, error) {
	out := make(map[int64]*matching.FeatureVector)
	for _, id := range userIDs {
		if v, ok := f.vectors[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func profileAt(id int64, lat, lon float64, interests ...string) *matching.Profile {
	return &matching.Profile{
		UserID:      id,
		Latitude:    floatPtr(lat),
		Longitude:   floatPtr(lon),
		MinAge:      18,
		MaxAge:      100,
		MaxDistance: 100,
		IsActive:    true,
		Interests:   interests,
	}
}

func boostedProfile(p *matching.Profile) *matching.Profile {
	expiry := time.Now().Add(time.Hour)
	p.BoostExpiry = &expiry
	return p
}

func vectorFor(id int64, age int, interests ...string) *matching.FeatureVector {
	return &matching.FeatureVector{
		UserID:       id,
		Demographics: matching.Demographics{Age: age, Gender: "Female"},
		Preferences: matching.Preferences{
			AgeRange:   matching.AgeRange{Min: 18, Max: 100},
			DistanceKM: 100,
			Intent:     "casual",
		},
		Interests: interests,
		Values:    []string{},
		Behavioral: matching.BehavioralSignals{
			ReplyLatencyAvgMinutes: matching.DefaultReplyLatency,
			TotalLikes:             3,
		},
		TrustScore: 0.5,
	}
}
