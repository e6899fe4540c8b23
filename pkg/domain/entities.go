// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by aquacore.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySpecies identifies a species catalog record.
	EntitySpecies EntityType = "species"
	// EntityTank identifies a tank record.
	EntityTank EntityType = "tank"
	// EntityStockingPlan identifies a stocking plan record.
	EntityStockingPlan EntityType = "stocking_plan"
	// EntityFeedItem identifies a feed inventory record.
	EntityFeedItem EntityType = "feed_item"
)

// TankShape enumerates the tank geometries the engine can reason about.
type TankShape string

// Canonical tank shapes. Bowl volume is fixed regardless of supplied dimensions.
const (
	ShapeBowl      TankShape = "bowl"
	ShapeRectangle TankShape = "rectangle"
	ShapeCylinder  TankShape = "cylinder"
)

// BowlVolumeLiters is the fixed effective volume of a bowl tank. Bowls ignore
// caller-supplied dimensions and volumes.
const BowlVolumeLiters = 10.0

// ParseTankShape normalizes a caller-supplied shape string to a TankShape.
// Adjectival spellings ("rectangular", "cylindrical") are accepted.
func ParseTankShape(s string) (TankShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bowl":
		return ShapeBowl, nil
	case "rectangle", "rectangular":
		return ShapeRectangle, nil
	case "cylinder", "cylindrical":
		return ShapeCylinder, nil
	default:
		return "", fmt.Errorf("unknown tank shape %q", s)
	}
}

// SocialBehavior is the closed grouping-behavior category a species is
// classified into exactly once at catalog ingestion. Engine logic switches
// over this enum, never over free-text descriptors.
type SocialBehavior string

// Canonical social behavior categories used by stocking math.
const (
	// BehaviorSolitary indicates a species kept one to a tank.
	BehaviorSolitary SocialBehavior = "solitary"
	// BehaviorTerritorial indicates a species that defends space against conspecifics.
	BehaviorTerritorial SocialBehavior = "territorial"
	// BehaviorPredatory indicates a species that hunts tankmates.
	BehaviorPredatory SocialBehavior = "predatory"
	// BehaviorPair indicates a species kept as a bonded pair.
	BehaviorPair SocialBehavior = "pair"
	// BehaviorSchooling indicates a species requiring a group; its minimum tank
	// size is the baseline volume for a full school.
	BehaviorSchooling SocialBehavior = "schooling"
	// BehaviorCommunity is the default category for ordinary community fish.
	BehaviorCommunity SocialBehavior = "community"
)

// ParseSocialBehavior parses an already-canonical behavior value. Free-text
// descriptors are classified by the catalog at ingestion, not here.
func ParseSocialBehavior(s string) (SocialBehavior, error) {
	switch SocialBehavior(strings.ToLower(strings.TrimSpace(s))) {
	case BehaviorSolitary, BehaviorTerritorial, BehaviorPredatory, BehaviorPair, BehaviorSchooling, BehaviorCommunity:
		return SocialBehavior(strings.ToLower(strings.TrimSpace(s))), nil
	default:
		return "", fmt.Errorf("unknown social behavior %q", s)
	}
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Species is an immutable catalog record describing one fish species. A nil
// MinTankLiters means the value is unknown and size-derived fallbacks apply;
// it is never conflated with zero.
type Species struct {
	Base
	CommonName       string         `json:"common_name"`
	ScientificName   *string        `json:"scientific_name,omitempty"`
	MaxSizeCm        float64        `json:"max_size_cm"`
	MinTankLiters    *float64       `json:"minimum_tank_size_l,omitempty"`
	Bioload          float64        `json:"bioload"`
	Behavior         SocialBehavior `json:"social_behavior"`
	BehaviorDetail   string         `json:"behavior_detail,omitempty"`
	Temperament      string         `json:"temperament,omitempty"`
	PreferredFood    string         `json:"preferred_food,omitempty"`
	PortionGrams     float64        `json:"portion_grams"`
	FeedingFrequency int            `json:"feeding_frequency"`
}

// Tank captures physical tank metadata. VolumeLiters is the canonical volume;
// dimensions are retained for provenance when the volume was derived.
type Tank struct {
	Base
	Name         string    `json:"name"`
	Shape        TankShape `json:"shape"`
	LengthCm     float64   `json:"length_cm,omitempty"`
	WidthCm      float64   `json:"width_cm,omitempty"`
	HeightCm     float64   `json:"height_cm,omitempty"`
	DiameterCm   float64   `json:"diameter_cm,omitempty"`
	VolumeLiters float64   `json:"volume_liters"`
}

// EffectiveVolumeLiters returns the volume stocking math must use for the
// tank. Bowls are pinned to BowlVolumeLiters.
func (t Tank) EffectiveVolumeLiters() float64 {
	if t.Shape == ShapeBowl {
		return BowlVolumeLiters
	}
	return t.VolumeLiters
}

// StockingPlan records an intended selection of species quantities for a tank.
type StockingPlan struct {
	Base
	Name      string         `json:"name"`
	TankID    string         `json:"tank_id"`
	Selection map[string]int `json:"selection"`
	Notes     *string        `json:"notes,omitempty"`
}

// FeedItem tracks one feed type held in inventory.
type FeedItem struct {
	Base
	FeedType     string  `json:"feed_type"`
	GramsOnHand  float64 `json:"grams_on_hand"`
	ReorderLevel float64 `json:"reorder_level_g,omitempty"`
}

// Change captures a single entity mutation inside a transaction for rule
// evaluation and audit.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// ErrNotFound reports a missing entity reference.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}
