package affect

import (
	"strings"

	"newsexecutor/src/model"
)

// inverseKeywords mark indicators where a higher reading is bearish.
var inverseKeywords = []string{"unemployment", "jobless", "claims"}

func IsInverse(name string) bool {
	return containsAny(strings.ToLower(name), inverseKeywords)
}

// Calculate classifies a release. Missing readings and exact equality are
// NEUTRAL.
func Calculate(forecast, actual *float64, name string) model.Affect {
	if forecast == nil || actual == nil || *forecast == *actual {
		return model.AffectNeutral
	}
	higher := *actual > *forecast
	if IsInverse(name) {
		higher = !higher
	}
	if higher {
		return model.AffectBull
	}
	return model.AffectBear
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
