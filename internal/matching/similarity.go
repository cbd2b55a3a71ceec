package matching

import (
	"math"
	"sort"
)

// CosineSimilarity compares two sparse vectors over their shared keys only.
// It returns 0 when no key is shared or either restricted norm is zero.
func CosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	shared := 0
	for key, va := range a {
		vb, ok := b[key]
		if !ok {
			continue
		}
		shared++
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}
	if shared == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// JaccardIndex is |A∩B| / |A∪B| over the distinct members of a and b
func JaccardIndex(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	union := len(setA)
	for item := range setB {
		if !setA[item] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(len(intersect(setA, setB))) / float64(union)
}

// SharedItems returns the sorted intersection of a and b
func SharedItems(a, b []string) []string {
	return intersect(toSet(a), toSet(b))
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

func intersect(a, b map[string]bool) []string {
	shared := make([]string, 0)
	for item := range a {
		if b[item] {
			shared = append(shared, item)
		}
	}
	sort.Strings(shared)
	return shared
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
