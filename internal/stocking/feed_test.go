package stocking

import (
	"math"
	"testing"

	"aquacore/pkg/domain"
)

func feeder(food string, portion float64, frequency, quantity int) SelectedSpecies {
	return SelectedSpecies{
		Species: domain.Species{
			CommonName:       "Feeder",
			PreferredFood:    food,
			PortionGrams:     portion,
			FeedingFrequency: frequency,
			Bioload:          1,
		},
		Name:     "Feeder",
		Quantity: quantity,
	}
}

func TestMatchesFeed(t *testing.T) {
	cases := []struct {
		preferred string
		feed      string
		want      bool
	}{
		{"Omnivore", "anything at all", true},
		{"flakes", "Flakes", true},                  // direct match
		{"tropical flakes", "flakes", true},         // feed inside preference
		{"flakes", "premium flakes mix", true},      // preference inside feed
		{"carnivore, live food", "bloodworms", true}, // keyword group
		{"herbivore", "algae wafers", true},
		{"herbivore", "bloodworms", false},
		{"", "flakes", false},
		{"flakes", "", false},
		{"granules", "pellets", false},   // no substring in either direction, no keyword hit
		{"pellet diet", "pellets", true}, // keyword group
	}
	for _, tc := range cases {
		if got := MatchesFeed(tc.preferred, tc.feed); got != tc.want {
			t.Fatalf("MatchesFeed(%q, %q) = %v, want %v", tc.preferred, tc.feed, got, tc.want)
		}
	}
}

func TestForecastDailyMath(t *testing.T) {
	e := New(nil)
	selection := []SelectedSpecies{
		feeder("flakes", 0.5, 2, 6),   // 6 g/day
		feeder("omnivore", 1.0, 1, 4), // 4 g/day, omnivores eat everything
	}
	forecast := e.Forecast(selection, map[string]float64{"flakes": 100})
	entry, ok := forecast["flakes"]
	if !ok {
		t.Fatalf("missing flakes entry: %v", forecast)
	}
	if math.Abs(entry.DailyConsumption-10) > 1e-9 {
		t.Fatalf("daily = %v, want 10", entry.DailyConsumption)
	}
	if entry.DaysRemaining != 10 {
		t.Fatalf("days = %d, want 10", entry.DaysRemaining)
	}
	if !entry.IsLowStock || entry.IsCritical {
		t.Fatalf("flags = low:%v critical:%v, want low only", entry.IsLowStock, entry.IsCritical)
	}
}

func TestForecastFlagThresholdsInclusive(t *testing.T) {
	e := New(nil)
	selection := []SelectedSpecies{feeder("flakes", 1, 1, 1)} // 1 g/day
	cases := []struct {
		grams    float64
		days     int
		low      bool
		critical bool
	}{
		{30, 30, false, false},
		{15, 15, false, false},
		{14.9, 14, true, false}, // floor lands on the boundary
		{14, 14, true, false},
		{8, 8, true, false},
		{7, 7, true, true},
		{0.5, 0, true, true},
	}
	for _, tc := range cases {
		entry := e.Forecast(selection, map[string]float64{"flakes": tc.grams})["flakes"]
		if entry.DaysRemaining != tc.days {
			t.Fatalf("%v g: days = %d, want %d", tc.grams, entry.DaysRemaining, tc.days)
		}
		if entry.IsLowStock != tc.low || entry.IsCritical != tc.critical {
			t.Fatalf("%v g: flags = low:%v critical:%v, want low:%v critical:%v",
				tc.grams, entry.IsLowStock, entry.IsCritical, tc.low, tc.critical)
		}
	}
}

func TestForecastOmitsUndefinedHorizons(t *testing.T) {
	e := New(nil)
	selection := []SelectedSpecies{feeder("herbivore", 1, 1, 1)}

	// Nothing in the selection eats bloodworms, and the empty jar of wafers
	// has no horizon either. Neither may appear as a zero or infinite entry.
	forecast := e.Forecast(selection, map[string]float64{
		"bloodworms":   500,
		"algae wafers": 0,
	})
	if forecast != nil {
		t.Fatalf("expected no forecast entries, got %v", forecast)
	}

	// Zero-portion species contribute nothing.
	forecast = e.Forecast([]SelectedSpecies{feeder("flakes", 0, 2, 5)}, map[string]float64{"flakes": 100})
	if forecast != nil {
		t.Fatalf("expected omission for zero daily consumption, got %v", forecast)
	}
}

func TestForecastEmptyInputs(t *testing.T) {
	e := New(nil)
	if got := e.Forecast(nil, map[string]float64{"flakes": 100}); got != nil {
		t.Fatalf("empty selection: %v", got)
	}
	if got := e.Forecast([]SelectedSpecies{feeder("flakes", 1, 1, 1)}, nil); got != nil {
		t.Fatalf("empty inventory: %v", got)
	}
}

func TestForecastMonotoneInGrams(t *testing.T) {
	e := New(nil)
	selection := []SelectedSpecies{feeder("flakes", 0.7, 3, 4)}
	previous := -1
	for grams := 10.0; grams <= 200; grams += 10 {
		entry := e.Forecast(selection, map[string]float64{"flakes": grams})["flakes"]
		if entry.DaysRemaining < previous {
			t.Fatalf("days shrank from %d to %d at %v g", previous, entry.DaysRemaining, grams)
		}
		previous = entry.DaysRemaining
	}
}
