package catalog

import (
	"strings"

	"aquacore/pkg/domain"
)

// ClassifyBehavior maps a free-text social-behavior descriptor onto the
// closed enum. Canonical values parse directly; otherwise keyword dispatch
// applies with first match winning and community as the default. A "pair"
// mention only counts when no grouping keyword is present, so descriptors
// like "schooling, happiest in pairs of six" classify as schooling.
func ClassifyBehavior(text string) domain.SocialBehavior {
	if behavior, err := domain.ParseSocialBehavior(text); err == nil {
		return behavior
	}

	t := strings.ToLower(text)
	grouping := strings.Contains(t, "school") ||
		strings.Contains(t, "shoal") ||
		strings.Contains(t, "colonial") ||
		strings.Contains(t, "colony")
	switch {
	case strings.Contains(t, "solitary"):
		return domain.BehaviorSolitary
	case strings.Contains(t, "territorial"):
		return domain.BehaviorTerritorial
	case strings.Contains(t, "predator"):
		return domain.BehaviorPredatory
	case strings.Contains(t, "pair") && !grouping:
		return domain.BehaviorPair
	case grouping:
		return domain.BehaviorSchooling
	default:
		return domain.BehaviorCommunity
	}
}
