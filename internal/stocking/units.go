// Package stocking implements the aquarium stocking and resource-capacity
// engine: volume normalization, tank-shape compatibility, tiered stocking
// recommendations, multi-species shared-capacity validation, pairwise
// compatibility aggregation, and feed depletion forecasting. The engine is
// pure and synchronous; catalog and compatibility data arrive through
// injected collaborator interfaces.
package stocking

import (
	"fmt"
	"math"

	"aquacore/pkg/domain"
)

// LitersPerGallon is the US-gallon conversion factor used in both directions.
const LitersPerGallon = 3.78541

// Unit identifies a caller-facing volume unit.
type Unit string

// Supported volume units.
const (
	UnitLiters  Unit = "L"
	UnitGallons Unit = "gal"
)

// InvalidDimensionError reports a non-positive volume or tank dimension.
type InvalidDimensionError struct {
	Dimension string
	Value     float64
}

func (e InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid %s %g: must be positive", e.Dimension, e.Value)
}

// GallonsToLiters converts US gallons to liters.
func GallonsToLiters(gal float64) float64 {
	return gal * LitersPerGallon
}

// LitersToGallons converts liters to US gallons.
func LitersToGallons(l float64) float64 {
	return l / LitersPerGallon
}

// ToLiters normalizes a user-entered volume to liters.
func ToLiters(value float64, unit Unit) (float64, error) {
	switch unit {
	case UnitLiters:
		return value, nil
	case UnitGallons:
		return GallonsToLiters(value), nil
	default:
		return 0, fmt.Errorf("unknown volume unit %q", unit)
	}
}

// Dimensions carries shape-specific tank measurements in centimeters. Only
// the fields relevant to the shape are consulted.
type Dimensions struct {
	LengthCm   float64
	WidthCm    float64
	HeightCm   float64
	DiameterCm float64
}

// DeriveVolumeLiters computes a tank volume from its shape and dimensions.
// Rectangles use L×W×H, cylinders π·r²·h (both cm³ scaled to liters); bowls
// are fixed at domain.BowlVolumeLiters and ignore dimensions entirely.
func DeriveVolumeLiters(shape domain.TankShape, d Dimensions) (float64, error) {
	switch shape {
	case domain.ShapeBowl:
		return domain.BowlVolumeLiters, nil
	case domain.ShapeRectangle:
		if d.LengthCm <= 0 {
			return 0, InvalidDimensionError{Dimension: "length", Value: d.LengthCm}
		}
		if d.WidthCm <= 0 {
			return 0, InvalidDimensionError{Dimension: "width", Value: d.WidthCm}
		}
		if d.HeightCm <= 0 {
			return 0, InvalidDimensionError{Dimension: "height", Value: d.HeightCm}
		}
		return d.LengthCm * d.WidthCm * d.HeightCm / 1000.0, nil
	case domain.ShapeCylinder:
		if d.DiameterCm <= 0 {
			return 0, InvalidDimensionError{Dimension: "diameter", Value: d.DiameterCm}
		}
		if d.HeightCm <= 0 {
			return 0, InvalidDimensionError{Dimension: "height", Value: d.HeightCm}
		}
		radius := d.DiameterCm / 2
		return math.Pi * radius * radius * d.HeightCm / 1000.0, nil
	default:
		return 0, fmt.Errorf("unknown tank shape %q", shape)
	}
}
