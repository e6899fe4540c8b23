package stocking

import (
	"fmt"

	"aquacore/pkg/domain"
)

// Size ceilings for constrained tank geometries, in centimeters of adult
// fish length. Rectangles carry no ceiling.
const (
	bowlMaxFishCm     = 8
	cylinderMaxFishCm = 20
)

// ShapeConflict reports whether a species cannot be kept in a tank of the
// given shape and effective volume, with a human-readable reason naming the
// offending number. The required volume is the species' minimum tank size
// scaled by quantity when more than one individual is requested; this models
// total footprint and is deliberately distinct from the sub-linear group
// sizing in Tiers. A missing minimum falls back to the size-derived volume.
func ShapeConflict(sp domain.Species, shape domain.TankShape, tankVolumeL float64, quantity int) (string, bool) {
	required := requiredLiters(sp)
	if quantity > 1 {
		required *= float64(quantity)
	}

	switch shape {
	case domain.ShapeBowl:
		if sp.MaxSizeCm > bowlMaxFishCm {
			return fmt.Sprintf("max adult size %.1f cm exceeds the %d cm bowl limit", sp.MaxSizeCm, bowlMaxFishCm), true
		}
		if required > domain.BowlVolumeLiters {
			return fmt.Sprintf("needs %.0f L but a bowl holds %.0f L", required, domain.BowlVolumeLiters), true
		}
	case domain.ShapeCylinder:
		if sp.MaxSizeCm > cylinderMaxFishCm {
			return fmt.Sprintf("max adult size %.1f cm exceeds the %d cm cylinder limit", sp.MaxSizeCm, cylinderMaxFishCm), true
		}
		if required > tankVolumeL {
			return fmt.Sprintf("needs %.0f L but the tank holds %.0f L", required, tankVolumeL), true
		}
	case domain.ShapeRectangle:
		if required > tankVolumeL {
			return fmt.Sprintf("needs %.0f L but the tank holds %.0f L", required, tankVolumeL), true
		}
	}
	return "", false
}

// requiredLiters is the raw single-unit minimum used by shape and shared
// capacity checks. Unlike per-unit tier math it never divides by school size.
func requiredLiters(sp domain.Species) float64 {
	if sp.MinTankLiters != nil && *sp.MinTankLiters > 0 {
		return *sp.MinTankLiters
	}
	return sizeDerivedLiters(sp)
}
