package matching

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// FeatureVector is the scoring input for one user. It is always replaced as a whole.
type FeatureVector struct {
	UserID          int64             `json:"user_id"`
	Demographics    Demographics      `json:"demographics"`
	Preferences     Preferences       `json:"preferences"`
	Interests       []string          `json:"interests"`
	Values          []string          `json:"values"`
	Behavioral      BehavioralSignals `json:"behavioral_signals"`
	TrustScore      float64           `json:"trust_score"`
	EngagementScore float64           `json:"engagement_score"`
	ComputedAt      time.Time         `json:"computed_at"`
}

type Demographics struct {
	Age      int      `json:"age"`
	Gender   string   `json:"gender"`
	Location Location `json:"location"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Preferences struct {
	AgeRange   AgeRange `json:"age_range"`
	DistanceKM int      `json:"distance_km"`
	Intent     string   `json:"intent"`
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age falls inside the inclusive range
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

type BehavioralSignals struct {
	ReplyLatencyAvgMinutes float64 `json:"reply_latency_avg_minutes"`
	ChatDepthScore         float64 `json:"chat_depth_score"`
	UnmatchRate            float64 `json:"unmatch_rate"`
	TotalLikes             int     `json:"total_likes"`
	TotalPasses            int     `json:"total_passes"`
	TotalSuperLikes        int     `json:"total_super_likes"`
	TotalMatches           int     `json:"total_matches"`
	LikeRate               float64 `json:"like_rate"`
}

// IsTrivial reports a vector with nothing to compare on: no interests,
// no values and no swipe history.
func (v *FeatureVector) IsTrivial() bool {
	b := v.Behavioral
	return len(v.Interests) == 0 && len(v.Values) == 0 &&
		b.TotalLikes == 0 && b.TotalPasses == 0 && b.TotalSuperLikes == 0
}

// Validate rejects vectors whose bounded fields are out of range, which
// only happens for corrupted stored copies.
func (v *FeatureVector) Validate() error {
	bounded := map[string]float64{
		"trust_score":      v.TrustScore,
		"engagement_score": v.EngagementScore,
		"chat_depth_score": v.Behavioral.ChatDepthScore,
		"unmatch_rate":     v.Behavioral.UnmatchRate,
		"like_rate":        v.Behavioral.LikeRate,
	}
	for name, value := range bounded {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s out of range: %v", name, value)
		}
	}
	if v.Preferences.AgeRange.Min > v.Preferences.AgeRange.Max {
		return fmt.Errorf("invalid age range [%d,%d]", v.Preferences.AgeRange.Min, v.Preferences.AgeRange.Max)
	}
	if v.Behavioral.ReplyLatencyAvgMinutes < 0 {
		return errors.New("negative reply latency")
	}
	return nil
}

// Value stores the vector as JSONB
func (v FeatureVector) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan reads the vector from JSONB
func (v *FeatureVector) Scan(value interface{}) error {
	var raw []byte
	switch data := value.(type) {
	case []byte:
		raw = data
	case string:
		raw = []byte(data)
	case nil:
		return errors.New("feature vector is null")
	default:
		return fmt.Errorf("cannot scan %T into FeatureVector", value)
	}
	return json.Unmarshal(raw, v)
}

// MatchScore is the explained result of scoring one pair
type MatchScore struct {
	Score      float64          `json:"score"`
	Reasons    []string         `json:"reasons"`
	Components []ComponentScore `json:"components"`
}

// ComponentScore is one weighted factor of a MatchScore
type ComponentScore struct {
	Name    string   `json:"name"`
	Score   float64  `json:"score"`
	Weight  float64  `json:"weight"`
	Reasons []string `json:"reasons"`
}

// Component looks up a component by name
func (m *MatchScore) Component(name string) (ComponentScore, bool) {
	for _, c := range m.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentScore{}, false
}

// TopReasons returns at most n reasons in evaluation order
func (m *MatchScore) TopReasons(n int) []string {
	if len(m.Reasons) <= n {
		return m.Reasons
	}
	return m.Reasons[:n]
}

// User is the account record the builder reads
type User struct {
	ID         int64     `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Profile holds the stored dating profile attributes
type Profile struct {
	UserID             int64          `json:"user_id" db:"user_id"`
	Bio                *string        `json:"bio,omitempty" db:"bio"`
	DateOfBirth        *time.Time     `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender             *string        `json:"gender,omitempty" db:"gender"`
	LookingFor         *string        `json:"looking_for,omitempty" db:"looking_for"`
	RelationshipStatus *string        `json:"relationship_status,omitempty" db:"relationship_status"`
	Location           *string        `json:"location,omitempty" db:"location"`
	Country            *string        `json:"country,omitempty" db:"country"`
	Latitude           *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude          *float64       `json:"longitude,omitempty" db:"longitude"`
	PassportLatitude   *float64       `json:"passport_latitude,omitempty" db:"passport_latitude"`
	PassportLongitude  *float64       `json:"passport_longitude,omitempty" db:"passport_longitude"`
	IsPassportEnabled  bool           `json:"is_passport_enabled" db:"is_passport_enabled"`
	MaxDistance        int            `json:"max_distance" db:"max_distance"`
	MinAge             int            `json:"min_age" db:"min_age"`
	MaxAge             int            `json:"max_age" db:"max_age"`
	IsActive           bool           `json:"is_active" db:"is_active"`
	IsHidden           bool           `json:"is_hidden" db:"is_hidden"`
	PreferredLanguage  *string        `json:"preferred_language,omitempty" db:"preferred_language"`
	BoostExpiry        *time.Time     `json:"boost_expiry,omitempty" db:"boost_expiry"`
	Interests          pq.StringArray `json:"interests" db:"interests"`
	Values             pq.StringArray `json:"values" db:"values"`
	HasPrimaryPhoto    bool           `json:"has_primary_photo" db:"has_primary_photo"`
}

// IsBoosted reports an unexpired boost window
func (p *Profile) IsBoosted(now time.Time) bool {
	return p.BoostExpiry != nil && p.BoostExpiry.After(now)
}

// Message is the part of a chat message the builder needs
type Message struct {
	ConversationID int64     `db:"conversation_id"`
	SenderID       int64     `db:"sender_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// Conversation groups messages in chronological order
type Conversation struct {
	ID       int64
	Messages []Message
}

// Snapshot is everything the builder reads about one user
type Snapshot struct {
	User          *User
	Profile       *Profile
	Conversations []Conversation

	Likes      int
	Passes     int
	SuperLikes int

	TotalMatches  int
	ActiveMatches int

	RecentLikes    int
	RecentSwipes   int
	RecentMessages int
}
