package matching

import (
	"context"
	"sort"
	"strings"
	"time"
)

const (
	DefaultAge            = 25
	DefaultGender         = "unknown"
	DefaultMinAge         = 18
	DefaultMaxAge         = 100
	DefaultMaxDistanceKM  = 50
	DefaultIntent         = "casual"
	DefaultReplyLatency   = 300.0
	MaxReplyLatency       = 1440.0
	DeepConversationSize  = 10
	EngagementActivityCap = 50.0
	RecentWindow          = 30 * 24 * time.Hour
)

// Source loads the collaborator data a vector is built from.
// It returns ErrUserNotFound when the user does not exist.
type Source interface {
	LoadSnapshot(ctx context.Context, userID int64, since time.Time) (*Snapshot, error)
}

// Builder turns stored user activity into feature vectors
type Builder struct {
	source Source
	now    func() time.Time
}

func NewBuilder(source Source) *Builder {
	return &Builder{source: source, now: time.Now}
}

// Build loads the user's current state and computes a fresh vector
func (b *Builder) Build(ctx context.Context, userID int64) (*FeatureVector, error) {
	now := b.now().UTC()
	snapshot, err := b.source.LoadSnapshot(ctx, userID, now.Add(-RecentWindow))
	if err != nil {
		return nil, err
	}
	vector := BuildFromSnapshot(userID, snapshot, now)
	recordVectorBuilt()
	return vector, nil
}

// BuildFromSnapshot computes a vector from already loaded data
func BuildFromSnapshot(userID int64, s *Snapshot, now time.Time) *FeatureVector {
	v := &FeatureVector{
		UserID: userID,
		Demographics: Demographics{
			Age:    DefaultAge,
			Gender: DefaultGender,
		},
		Preferences: Preferences{
			AgeRange:   AgeRange{Min: DefaultMinAge, Max: DefaultMaxAge},
			DistanceKM: DefaultMaxDistanceKM,
			Intent:     DefaultIntent,
		},
		Interests:  []string{},
		Values:     []string{},
		ComputedAt: now,
	}

	if p := s.Profile; p != nil {
		if p.DateOfBirth != nil {
			v.Demographics.Age = AgeAt(*p.DateOfBirth, now)
		}
		if p.Gender != nil && *p.Gender != "" {
			v.Demographics.Gender = *p.Gender
		}
		if p.Latitude != nil && p.Longitude != nil {
			v.Demographics.Location = Location{Lat: *p.Latitude, Lon: *p.Longitude}
		}
		if p.MinAge > 0 {
			v.Preferences.AgeRange.Min = p.MinAge
		}
		if p.MaxAge > 0 {
			v.Preferences.AgeRange.Max = p.MaxAge
		}
		if p.MaxDistance > 0 {
			v.Preferences.DistanceKM = p.MaxDistance
		}
		if p.LookingFor != nil && *p.LookingFor != "" {
			v.Preferences.Intent = NormalizeIntent(*p.LookingFor)
		}
		v.Interests = normalizeSet(p.Interests, true)
		v.Values = normalizeSet(p.Values, false)
	}

	v.Behavioral = behavioralSignals(userID, s)
	v.TrustScore = trustScore(s)
	v.EngagementScore = engagementScore(s)
	return v
}

func behavioralSignals(userID int64, s *Snapshot) BehavioralSignals {
	signals := BehavioralSignals{
		ReplyLatencyAvgMinutes: averageOr(ReplyLatencies(userID, s.Conversations), DefaultReplyLatency),
		TotalLikes:             s.Likes,
		TotalPasses:            s.Passes,
		TotalSuperLikes:        s.SuperLikes,
		TotalMatches:           s.ActiveMatches,
	}

	if len(s.Conversations) > 0 {
		deep := 0
		for _, c := range s.Conversations {
			if len(c.Messages) >= DeepConversationSize {
				deep++
			}
		}
		signals.ChatDepthScore = float64(deep) / float64(len(s.Conversations))
	}

	if s.TotalMatches > 0 {
		inactive := s.TotalMatches - s.ActiveMatches
		signals.UnmatchRate = clamp01(float64(inactive) / float64(s.TotalMatches))
	}

	if decided := s.Likes + s.Passes; decided > 0 {
		signals.LikeRate = float64(s.Likes) / float64(decided)
	}
	return signals
}

// ReplyLatencies walks each conversation in order and records, in minutes,
// how long the other party took to answer the user's latest unanswered
// message. Each observation is capped at MaxReplyLatency.
func ReplyLatencies(userID int64, conversations []Conversation) []float64 {
	latencies := make([]float64, 0)
	for _, c := range conversations {
		messages := append([]Message(nil), c.Messages...)
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		})

		var pending *time.Time
		for i := range messages {
			msg := messages[i]
			if msg.SenderID == userID {
				sent := msg.CreatedAt
				pending = &sent
				continue
			}
			if pending != nil {
				minutes := msg.CreatedAt.Sub(*pending).Minutes()
				if minutes > MaxReplyLatency {
					minutes = MaxReplyLatency
				}
				latencies = append(latencies, minutes)
				pending = nil
			}
		}
	}
	return latencies
}

func trustScore(s *Snapshot) float64 {
	score := 0.5
	if s.User != nil && s.User.IsVerified {
		score += 0.2
	}
	if s.Profile != nil && s.Profile.HasPrimaryPhoto {
		score += 0.1
	}
	return clamp01(score)
}

func engagementScore(s *Snapshot) float64 {
	activity := float64(s.RecentLikes+s.RecentMessages) / EngagementActivityCap
	if activity > 1 {
		activity = 1
	}
	completion := float64(CompletionScore(s.User, s.Profile)) / 100
	return clamp01(0.7*activity + 0.3*completion)
}

// CompletionScore is the percentage of the ten tracked profile fields that are filled in
func CompletionScore(user *User, p *Profile) int {
	if p == nil {
		return 0
	}
	checks := []bool{
		p.Bio != nil && *p.Bio != "",
		p.DateOfBirth != nil,
		p.Gender != nil && *p.Gender != "",
		p.LookingFor != nil && *p.LookingFor != "",
		p.RelationshipStatus != nil && *p.RelationshipStatus != "",
		p.Location != nil && *p.Location != "" && p.Latitude != nil && p.Longitude != nil,
		p.HasPrimaryPhoto,
		len(p.Interests) > 0,
		user != nil && user.Email != "" && user.IsVerified,
		p.IsActive,
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return filled * 100 / len(checks)
}

// AgeAt returns full years elapsed between dob and now
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func normalizeSet(items []string, lower bool) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func averageOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
