package stocking

import (
	"fmt"
	"math"
	"strings"

	"aquacore/pkg/domain"
)

// Defaults applied by Config.withDefaults.
const (
	// DefaultSchoolSize is the baseline group size a schooling species'
	// minimum tank volume is quoted for.
	DefaultSchoolSize = 6
	// DefaultMaxQuantity is the upper clamp on every recommendation tier.
	DefaultMaxQuantity = 20
	// DefaultLowStockDays and DefaultCriticalDays bound the feed forecast
	// flags. Two threshold pairs exist in the wild (7/3 and 14/7); aquacore
	// standardizes on the conservative pair so reorders get more lead time.
	DefaultLowStockDays = 14
	DefaultCriticalDays = 7
)

// Bounds for the size-derived per-unit volume fallback, in liters.
const (
	fallbackMinLiters = 5
	fallbackMaxLiters = 200
)

// WarningInsufficientSpace is the stable warning token attached when a tank
// cannot support even a partial school of a species.
const WarningInsufficientSpace = "insufficient_space"

// Config tunes the engine's stocking and forecasting policy. The zero value
// takes the documented defaults.
type Config struct {
	// SchoolSize is the group size a schooling species' minimum tank volume
	// is interpreted against (per-unit volume = minimum / SchoolSize).
	SchoolSize int
	// MaxQuantity caps every recommendation tier.
	MaxQuantity int
	// LowStockDays and CriticalDays are the feed forecast flag thresholds,
	// inclusive: a feed with DaysRemaining <= threshold is flagged.
	LowStockDays int
	CriticalDays int
}

func (c Config) withDefaults() Config {
	if c.SchoolSize <= 0 {
		c.SchoolSize = DefaultSchoolSize
	}
	if c.MaxQuantity <= 0 {
		c.MaxQuantity = DefaultMaxQuantity
	}
	if c.LowStockDays <= 0 {
		c.LowStockDays = DefaultLowStockDays
	}
	if c.CriticalDays <= 0 {
		c.CriticalDays = DefaultCriticalDays
	}
	return c
}

// Tiers carries the three stocking-density recommendations for one species,
// ordered from cautious to permissive, plus an optional advisory warning.
type Tiers struct {
	Conservative   int
	Typical        int
	TheoreticalMax int
	Warning        string
}

// Tiers computes the recommended quantity tiers for a species in a tank of
// the given effective volume. Dispatch is over the closed behavior enum; the
// free-text descriptor a species was ingested with never reaches this code.
func (e *Engine) Tiers(sp domain.Species, tankVolumeL float64) Tiers {
	switch sp.Behavior {
	case domain.BehaviorSolitary, domain.BehaviorTerritorial, domain.BehaviorPredatory:
		return Tiers{Conservative: 1, Typical: 1, TheoreticalMax: 1}
	case domain.BehaviorPair:
		return Tiers{Conservative: 2, Typical: 2, TheoreticalMax: 2}
	case domain.BehaviorSchooling:
		return e.schoolingTiers(sp, tankVolumeL)
	default:
		return e.communityTiers(sp, tankVolumeL)
	}
}

// schoolingTiers treats the species' minimum tank volume as the baseline for
// a full school: per-unit liters = minimum / SchoolSize.
func (e *Engine) schoolingTiers(sp domain.Species, tankVolumeL float64) Tiers {
	perUnit := e.perUnitLiters(sp, true)
	capacity := tankVolumeL / perUnit / effectiveBioload(sp)

	school := e.cfg.SchoolSize
	switch {
	case capacity >= 5:
		t := Tiers{
			Conservative:   school,
			Typical:        int(math.Floor(capacity * 1.2)),
			TheoreticalMax: int(math.Floor(capacity * 1.5)),
		}
		return e.clampTiers(t, school)
	case capacity >= 1:
		t := Tiers{
			Conservative:   int(math.Round(capacity)),
			Typical:        int(math.Floor(capacity)),
			TheoreticalMax: int(math.Ceil(capacity)),
			Warning:        fmt.Sprintf("Schooling fish require groups of %d+ for wellbeing; this tank only supports a partial school", school),
		}
		return e.clampTiers(t, 1)
	default:
		// Not even one individual fits; the zero result bypasses clamping.
		return Tiers{Warning: WarningInsufficientSpace}
	}
}

// communityTiers applies the default community sizing: capacity is simply
// tank volume over per-unit volume, scaled by bioload.
func (e *Engine) communityTiers(sp domain.Species, tankVolumeL float64) Tiers {
	perUnit := e.perUnitLiters(sp, false)
	capacity := tankVolumeL / perUnit / effectiveBioload(sp)

	t := Tiers{
		Conservative:   maxInt(int(math.Floor(capacity)), 1),
		Typical:        maxInt(int(math.Round(capacity)), 1),
		TheoreticalMax: maxInt(int(math.Ceil(capacity*1.2)), 1),
	}
	if t.Conservative < 2 || t.Typical < 2 || t.TheoreticalMax < 2 {
		t.Warning = "Community fish prefer groups of 2 or more"
	}
	return e.clampTiers(t, 2)
}

func (e *Engine) clampTiers(t Tiers, lowerBound int) Tiers {
	t.Conservative = clampInt(t.Conservative, lowerBound, e.cfg.MaxQuantity)
	t.Typical = clampInt(t.Typical, lowerBound, e.cfg.MaxQuantity)
	t.TheoreticalMax = clampInt(t.TheoreticalMax, lowerBound, e.cfg.MaxQuantity)
	return t
}

// perUnitLiters resolves the volume one individual of the species requires.
// Schooling species divide their group-baseline minimum by the school size.
// A missing (or non-positive) minimum falls back to the size-derived volume.
func (e *Engine) perUnitLiters(sp domain.Species, schooling bool) float64 {
	if sp.MinTankLiters != nil && *sp.MinTankLiters > 0 {
		if schooling {
			return *sp.MinTankLiters / float64(e.cfg.SchoolSize)
		}
		return *sp.MinTankLiters
	}
	return sizeDerivedLiters(sp)
}

// sizeDerivedLiters estimates a per-unit volume from adult size when no
// minimum tank size is on record: base gallons = maxSizeCm / 2.54 (one
// gallon per inch of fish), scaled by temperament, clamped to [5, 200] L.
func sizeDerivedLiters(sp domain.Species) float64 {
	baseGallons := sp.MaxSizeCm / 2.54
	liters := GallonsToLiters(baseGallons * temperamentMultiplier(sp.Temperament))
	if liters < fallbackMinLiters {
		return fallbackMinLiters
	}
	if liters > fallbackMaxLiters {
		return fallbackMaxLiters
	}
	return liters
}

// temperamentMultiplier scales the size-derived fallback. The semi-aggressive
// check must run before the aggressive one because the former contains the
// latter as a substring.
func temperamentMultiplier(temperament string) float64 {
	t := strings.ToLower(temperament)
	switch {
	case strings.Contains(t, "semi-aggressive"), strings.Contains(t, "semi aggressive"):
		return 1.5
	case strings.Contains(t, "aggressive"):
		return 2.0
	case strings.Contains(t, "shy"):
		return 0.8
	default:
		return 1.0
	}
}

// effectiveBioload guards stocking math against dirty catalog rows: bioload
// must be positive, so anything else is treated as the 1.0 baseline.
func effectiveBioload(sp domain.Species) float64 {
	if sp.Bioload > 0 {
		return sp.Bioload
	}
	return 1.0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
