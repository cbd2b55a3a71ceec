package matching

import "strings"

// KnownGenders are the profile gender options used for one-hot encoding
var KnownGenders = []string{"Male", "Female", "Other", "Prefer not to say"}

// KnownIntents are the looking-for options, stored in normalized form
var KnownIntents = []string{
	NormalizeIntent("Long-term relationship"),
	NormalizeIntent("Short-term relationship"),
	NormalizeIntent("Friendship"),
	NormalizeIntent("Casual dating"),
}

// NormalizeIntent lower-cases an intent and replaces spaces with underscores
func NormalizeIntent(intent string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(intent)), " ", "_")
}

func encodingKey(prefix, value string) string {
	return prefix + strings.ReplaceAll(value, " ", "_")
}

// Encode flattens a vector into the numeric form compared by CosineSimilarity.
// Every catalog interest gets a key so two encodings over the same catalog
// share the interest dimensions.
func Encode(v *FeatureVector, catalog []string) map[string]float64 {
	out := make(map[string]float64, len(KnownGenders)+len(KnownIntents)+len(catalog)+7)

	for _, gender := range KnownGenders {
		out[encodingKey("gender_", gender)] = boolFloat(strings.EqualFold(gender, v.Demographics.Gender))
	}
	for _, intent := range KnownIntents {
		out["looking_for_"+intent] = boolFloat(intent == v.Preferences.Intent)
	}

	out["age"] = float64(v.Demographics.Age) / 100
	out["min_age"] = float64(v.Preferences.AgeRange.Min) / 100
	out["max_age"] = float64(v.Preferences.AgeRange.Max) / 100
	out["max_distance"] = float64(v.Preferences.DistanceKM) / 500

	held := toSet(v.Interests)
	for _, interest := range catalog {
		out[encodingKey("interest_", strings.ToLower(interest))] = boolFloat(held[strings.ToLower(interest)])
	}
	for interest := range held {
		out[encodingKey("interest_", interest)] = 1
	}

	out["likes_made"] = float64(v.Behavioral.TotalLikes) / 1000
	out["passes_made"] = float64(v.Behavioral.TotalPasses) / 1000
	out["super_likes_made"] = float64(v.Behavioral.TotalSuperLikes) / 1000

	return out
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
