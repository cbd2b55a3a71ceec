package matching

import (
	"fmt"
	"strings"
)

const (
	ComponentPreferenceAlignment = "preference_alignment"
	ComponentInterestSimilarity  = "interest_similarity"
	ComponentValuesCompatibility = "values_compatibility"
	ComponentBehavioral          = "behavioral_compatibility"
	ComponentTrustSafety         = "trust_safety_score"
	ComponentActivityRecency     = "activity_recency"
)

// TODO: replace with a real distance score once location is compared in the matcher.
const DistanceCompatibilityPlaceholder = 0.4

// TODO: replace with a last-active comparison once activity timestamps reach the vector.
const ActivityRecencyPlaceholder = 0.7

type componentFunc func(a, b *FeatureVector) (float64, []string)

type component struct {
	name   string
	weight float64
	fn     componentFunc
}

// Matcher scores pairs of vectors with an explanation per component
type Matcher struct {
	components []component
}

// NewMatcher returns the fixed component table. The weights sum to 1.0.
func NewMatcher() *Matcher {
	return &Matcher{components: []component{
		{ComponentPreferenceAlignment, 0.25, preferenceAlignment},
		{ComponentInterestSimilarity, 0.20, interestSimilarity},
		{ComponentValuesCompatibility, 0.20, valuesCompatibility},
		{ComponentBehavioral, 0.15, behavioralCompatibility},
		{ComponentTrustSafety, 0.10, trustSafety},
		{ComponentActivityRecency, 0.10, activityRecency},
	}}
}

// Score computes the weighted compatibility of a and b
func (m *Matcher) Score(a, b *FeatureVector) *MatchScore {
	result := &MatchScore{
		Reasons:    make([]string, 0, len(m.components)+1),
		Components: make([]ComponentScore, 0, len(m.components)),
	}

	var total float64
	for _, c := range m.components {
		score, reasons := c.fn(a, b)
		weight := c.weight
		total += score * weight
		result.Reasons = append(result.Reasons, reasons...)
		result.Components = append(result.Components, ComponentScore{
			Name:    c.name,
			Score:   score,
			Weight:  weight,
			Reasons: reasons,
		})
	}

	result.Score = clamp01(total)
	recordMatchScore(result.Score)
	return result
}

func preferenceAlignment(a, b *FeatureVector) (float64, []string) {
	aLikesB := a.Preferences.AgeRange.Contains(b.Demographics.Age)
	bLikesA := b.Preferences.AgeRange.Contains(a.Demographics.Age)

	var score float64
	var reason string
	switch {
	case aLikesB && bLikesA:
		score, reason = 0.6, "Age preferences are mutually compatible"
	case aLikesB || bLikesA:
		score, reason = 0.3, "Age preferences partially align"
	default:
		reason = "Age preferences don't align"
	}

	score += DistanceCompatibilityPlaceholder
	if score > 1 {
		score = 1
	}
	return score, []string{reason}
}

func interestSimilarity(a, b *FeatureVector) (float64, []string) {
	if len(a.Interests) == 0 || len(b.Interests) == 0 {
		return 0.5, []string{"Limited interest data available"}
	}

	shared := SharedItems(a.Interests, b.Interests)
	if len(shared) == 0 {
		return 0, []string{"No shared interests found"}
	}
	return JaccardIndex(a.Interests, b.Interests), []string{"Shared interests: " + joinFirst(shared, 3)}
}

func valuesCompatibility(a, b *FeatureVector) (float64, []string) {
	if len(a.Values) == 0 || len(b.Values) == 0 {
		return 0.5, []string{"Limited values data available"}
	}

	shared := SharedItems(a.Values, b.Values)
	larger := len(toSet(a.Values))
	if n := len(toSet(b.Values)); n > larger {
		larger = n
	}
	score := float64(len(shared)) / float64(larger)

	if len(shared) == 0 {
		return score, []string{"Different value systems"}
	}
	return score, []string{"Shared values: " + joinFirst(shared, 2)}
}

func behavioralCompatibility(a, b *FeatureVector) (float64, []string) {
	reasons := make([]string, 0, 2)

	latencyScore := 0.4
	if absDiff(a.Behavioral.ReplyLatencyAvgMinutes, b.Behavioral.ReplyLatencyAvgMinutes) < 60 {
		latencyScore = 0.8
		reasons = append(reasons, "Similar communication response times")
	} else {
		reasons = append(reasons, "Different communication paces")
	}

	engagementScore := 0.4
	if absDiff(a.Behavioral.LikeRate, b.Behavioral.LikeRate) < 0.2 {
		engagementScore = 0.8
		reasons = append(reasons, "Similar engagement patterns")
	} else {
		reasons = append(reasons, "Different engagement levels")
	}

	return (latencyScore + engagementScore) / 2, reasons
}

func trustSafety(a, b *FeatureVector) (float64, []string) {
	avg := (a.TrustScore + b.TrustScore) / 2
	switch {
	case avg > 0.8:
		return avg, []string{"Both users have high trust scores"}
	case avg > 0.6:
		return avg, []string{"Both users have good trust scores"}
	default:
		return avg, []string{"Trust verification recommended"}
	}
}

func activityRecency(a, b *FeatureVector) (float64, []string) {
	return ActivityRecencyPlaceholder, []string{"Both users are actively engaged"}
}

func joinFirst(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, ", ")
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Describe renders a one-line summary used in logs
func (m *MatchScore) Describe() string {
	return fmt.Sprintf("score=%.3f reasons=%d", m.Score, len(m.Reasons))
}
