package stocking

import (
	"math"
	"strings"
)

// FeedForecast is the depletion outlook for one feed type. Entries exist
// only for feeds the current selection actually consumes; a feed nothing
// eats has no defined depletion horizon and is omitted rather than reported
// as zero or infinite.
type FeedForecast struct {
	DaysRemaining    int     `json:"days_remaining"`
	DailyConsumption float64 `json:"daily_consumption"`
	IsLowStock       bool    `json:"is_low_stock"`
	IsCritical       bool    `json:"is_critical"`
}

// feedKeywordGroups maps canonical feed types to the diet keywords that
// imply a species eats them, supplementing the direct substring match.
var feedKeywordGroups = map[string][]string{
	"bloodworms":   {"live food", "protein", "meat", "carnivore", "insect", "frozen"},
	"brine shrimp": {"live food", "protein", "meat", "carnivore", "crustacean", "frozen"},
	"daphnia":      {"live food", "protein", "insect", "crustacean"},
	"tubifex":      {"live food", "protein", "meat", "carnivore", "worm"},
	"krill":        {"protein", "meat", "carnivore", "crustacean", "frozen"},
	"flakes":       {"flake", "staple", "community", "general"},
	"pellets":      {"pellet", "staple", "general"},
	"algae wafers": {"algae", "vegetable", "plant", "herbivore", "bottom feeder"},
	"spirulina":    {"algae", "vegetable", "plant", "herbivore"},
	"vegetables":   {"vegetable", "plant", "herbivore", "greens"},
}

// MatchesFeed reports whether a species' preferred-food descriptor covers a
// feed type: omnivores eat everything, otherwise a direct substring match in
// either direction or any keyword-group hit counts.
func MatchesFeed(preferredFood, feedType string) bool {
	pref := strings.ToLower(strings.TrimSpace(preferredFood))
	feed := strings.ToLower(strings.TrimSpace(feedType))
	if pref == "" || feed == "" {
		return false
	}
	if strings.Contains(pref, "omnivore") {
		return true
	}
	if strings.Contains(pref, feed) || strings.Contains(feed, pref) {
		return true
	}
	for _, keyword := range feedKeywordGroups[feed] {
		if strings.Contains(pref, keyword) {
			return true
		}
	}
	return false
}

// Forecast computes per-feed depletion from the inventory and the selection's
// daily consumption. Per feed with grams on hand: every matching species
// consumes portionGrams x feedingFrequency x quantity per day, and
// daysRemaining = floor(grams / dailyTotal). Deterministic and monotone:
// more grams never shortens the horizon.
func (e *Engine) Forecast(selection []SelectedSpecies, inventory map[string]float64) map[string]FeedForecast {
	if len(inventory) == 0 || len(selection) == 0 {
		return nil
	}

	out := make(map[string]FeedForecast)
	for feedType, grams := range inventory {
		if grams <= 0 {
			continue
		}
		var daily float64
		for _, sel := range selection {
			if MatchesFeed(sel.PreferredFood, feedType) {
				daily += sel.PortionGrams * float64(sel.FeedingFrequency) * float64(sel.Quantity)
			}
		}
		if daily <= 0 {
			continue
		}
		days := int(math.Floor(grams / daily))
		out[feedType] = FeedForecast{
			DaysRemaining:    days,
			DailyConsumption: daily,
			IsLowStock:       days <= e.cfg.LowStockDays,
			IsCritical:       days <= e.cfg.CriticalDays,
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
