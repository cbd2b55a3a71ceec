package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightsSumToOne(t *testing.T) {
	m := NewMatcher()
	a := vectorWith(30, 25, 35, nil, nil)

	first := m.Score(a, a)
	var sum float64
	for i := range first.Components {
		sum += first.Components[i].Weight
		first.Components[i].Weight = 0
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// a caller editing a result does not change later scoring
	second := m.Score(a, a)
	require.Len(t, second.Components, 6)
	assert.InDelta(t, 0.25, second.Components[0].Weight, 1e-9)
	assert.InDelta(t, first.Score, second.Score, 1e-9)
}

func TestPreferenceAlignmentMutual(t *testing.T) {
	a := vectorWith(30, 25, 35, nil, nil)
	b := vectorWith(32, 28, 40, nil, nil)

	score := NewMatcher().Score(a, b)

	c, ok := score.Component(ComponentPreferenceAlignment)
	require.True(t, ok)
	assert.InDelta(t, 1.0, c.Score, 1e-9)
	assert.Equal(t, []string{"Age preferences are mutually compatible"}, c.Reasons)
}

func TestPreferenceAlignmentVerdicts(t *testing.T) {
	tests := []struct {
		name   string
		a, b   *FeatureVector
		score  float64
		reason string
	}{
		{
			name:   "partial",
			a:      vectorWith(30, 25, 35, nil, nil),
			b:      vectorWith(32, 18, 29, nil, nil),
			score:  0.7,
			reason: "Age preferences partially align",
		},
		{
			name:   "none",
			a:      vectorWith(30, 40, 50, nil, nil),
			b:      vectorWith(32, 18, 25, nil, nil),
			score:  0.4,
			reason: "Age preferences don't align",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := preferenceAlignment(tt.a, tt.b)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, []string{tt.reason}, reasons)
		})
	}
}

func TestInterestSimilarity(t *testing.T) {
	score, reasons := interestSimilarity(
		vectorWith(30, 18, 100, []string{"a", "b"}, nil),
		vectorWith(30, 18, 100, []string{"b", "c"}, nil),
	)
	assert.InDelta(t, 1.0/3.0, score, 1e-9)
	assert.Equal(t, []string{"Shared interests: b"}, reasons)

	score, reasons = interestSimilarity(
		vectorWith(30, 18, 100, []string{"art", "music", "travel", "yoga"}, nil),
		vectorWith(30, 18, 100, []string{"yoga", "travel", "music", "art"}, nil),
	)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.Equal(t, []string{"Shared interests: art, music, travel"}, reasons)

	score, reasons = interestSimilarity(
		vectorWith(30, 18, 100, []string{"a"}, nil),
		vectorWith(30, 18, 100, []string{"b"}, nil),
	)
	assert.Zero(t, score)
	assert.Equal(t, []string{"No shared interests found"}, reasons)

	score, reasons = interestSimilarity(vectorWith(30, 18, 100, nil, nil), vectorWith(30, 18, 100, []string{"b"}, nil))
	assert.InDelta(t, 0.5, score, 1e-9)
	assert.Equal(t, []string{"Limited interest data available"}, reasons)
}

func TestValuesCompatibility(t *testing.T) {
	score, reasons := valuesCompatibility(
		vectorWith(30, 18, 100, nil, []string{"family", "honesty", "faith"}),
		vectorWith(30, 18, 100, nil, []string{"honesty", "family"}),
	)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)
	assert.Equal(t, []string{"Shared values: family, honesty"}, reasons)

	score, reasons = valuesCompatibility(
		vectorWith(30, 18, 100, nil, []string{"family"}),
		vectorWith(30, 18, 100, nil, []string{"career"}),
	)
	assert.Zero(t, score)
	assert.Equal(t, []string{"Different value systems"}, reasons)

	score, reasons = valuesCompatibility(vectorWith(30, 18, 100, nil, nil), vectorWith(30, 18, 100, nil, nil))
	assert.InDelta(t, 0.5, score, 1e-9)
	assert.Equal(t, []string{"Limited values data available"}, reasons)
}

func TestBehavioralCompatibility(t *testing.T) {
	a := vectorWith(30, 18, 100, nil, nil)
	b := vectorWith(30, 18, 100, nil, nil)
	a.Behavioral.ReplyLatencyAvgMinutes, b.Behavioral.ReplyLatencyAvgMinutes = 30, 80
	a.Behavioral.LikeRate, b.Behavioral.LikeRate = 0.2, 0.7

	score, reasons := behavioralCompatibility(a, b)
	assert.InDelta(t, 0.6, score, 1e-9)
	assert.Equal(t, []string{"Similar communication response times", "Different engagement levels"}, reasons)
}

func TestTrustSafetyReasons(t *testing.T) {
	tests := []struct {
		a, b   float64
		reason string
	}{
		{0.9, 0.9, "Both users have high trust scores"},
		{0.8, 0.6, "Both users have good trust scores"},
		{0.5, 0.5, "Trust verification recommended"},
	}
	for _, tt := range tests {
		a := vectorWith(30, 18, 100, nil, nil)
		b := vectorWith(30, 18, 100, nil, nil)
		a.TrustScore, b.TrustScore = tt.a, tt.b

		score, reasons := trustSafety(a, b)
		assert.InDelta(t, (tt.a+tt.b)/2, score, 1e-9)
		assert.Equal(t, []string{tt.reason}, reasons)
	}
}

func TestScoreIsSymmetricAndBounded(t *testing.T) {
	a := vectorWith(30, 25, 35, []string{"music", "travel"}, []string{"family"})
	b := vectorWith(45, 28, 40, []string{"travel", "yoga"}, []string{"family", "career"})
	a.Behavioral.ReplyLatencyAvgMinutes, b.Behavioral.ReplyLatencyAvgMinutes = 20, 400
	a.Behavioral.LikeRate, b.Behavioral.LikeRate = 0.5, 0.6
	a.TrustScore, b.TrustScore = 0.7, 0.9

	m := NewMatcher()
	ab := m.Score(a, b)
	ba := m.Score(b, a)

	assert.GreaterOrEqual(t, ab.Score, 0.0)
	assert.LessOrEqual(t, ab.Score, 1.0)
	assert.InDelta(t, ab.Score, ba.Score, 1e-9)
	require.Len(t, ab.Components, 6)
	for i := range ab.Components {
		assert.Equal(t, ab.Components[i].Name, ba.Components[i].Name)
		assert.InDelta(t, ab.Components[i].Score, ba.Components[i].Score, 1e-9, ab.Components[i].Name)
	}
}

func TestScoreReasonsFollowComponentOrder(t *testing.T) {
	a := vectorWith(30, 25, 35, nil, nil)
	b := vectorWith(32, 28, 40, nil, nil)

	score := NewMatcher().Score(a, b)

	assert.Equal(t, []string{
		"Age preferences are mutually compatible",
		"Limited interest data available",
		"Limited values data available",
		"Similar communication response times",
		"Similar engagement patterns",
		"Trust verification recommended",
		"Both users are actively engaged",
	}, score.Reasons)

	want := 0.25*1.0 + 0.20*0.5 + 0.20*0.5 + 0.15*0.8 + 0.10*0.5 + 0.10*ActivityRecencyPlaceholder
	assert.InDelta(t, want, score.Score, 1e-9)
	assert.Len(t, score.TopReasons(3), 3)
}
