package dating

import (
	"errors"
	"time"

	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

var ErrUserNotFound = errors.New("user not found")

// Candidate is a profile that passed the hard filters
type Candidate struct {
	Profile    *matching.Profile
	DistanceKM *float64
	Swiped     bool
}

// RankedCandidate is one entry of a recommendation list
type RankedCandidate struct {
	CandidateID int64                `json:"candidate_id"`
	Score       float64              `json:"score"`
	Boosted     bool                 `json:"boosted"`
	Reasons     []string             `json:"reasons"`
	DistanceKM  *float64             `json:"distance_km,omitempty"`
	Match       *matching.MatchScore `json:"match,omitempty"`
}

// Filters narrows candidates beyond the requester's stored preferences
type Filters struct {
	Gender     string
	LookingFor string
	Language   string
}

// RecommendOptions controls one ranking request
type RecommendOptions struct {
	Limit   int
	Explain bool
	Filters Filters
}

// CandidateQuery is what the repository needs to apply the hard filters
type CandidateQuery struct {
	UserID     int64
	MinAge     int
	MaxAge     int
	Gender     string
	LookingFor string
	Language   string
	// Box restricts candidates to an area around the requester
	Box *BoundingBox
	// Country restricts candidates when the requester has no location
	Country       string
	ExcludeSwiped bool
	Limit         int
}

// BoundingBox is a lat/lon rectangle in degrees
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Coordinates is a resolved position used for distance filtering
type Coordinates struct {
	Lat float64
	Lon float64
}

func boosted(p *matching.Profile, now time.Time) bool {
	return p != nil && p.IsBoosted(now)
}
