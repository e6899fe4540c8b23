package stockpluginapi

import "context"

// Severity levels a plugin rule can attach to findings. Blocking findings
// abort the transaction that triggered them.
type Severity string

// Severity values ordered from prohibitive to informational.
const (
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
	SeverityLog   Severity = "log"
)

// Entity names usable in violations.
const (
	EntitySpecies      = "species"
	EntityTank         = "tank"
	EntityStockingPlan = "stocking_plan"
	EntityFeedItem     = "feed_item"
)

// Violation is one rule finding.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   string
	EntityID string
}

// Result aggregates a rule's findings.
type Result struct {
	Violations []Violation
}

// SpeciesView is a read-only projection of a stored species record.
type SpeciesView struct {
	ID               string
	CommonName       string
	ScientificName   string
	MaxSizeCm        float64
	MinTankLiters    float64 // zero when unspecified
	Bioload          float64
	Behavior         string
	BehaviorDetail   string
	Temperament      string
	PreferredFood    string
	PortionGrams     float64
	FeedingFrequency int
}

// TankView is a read-only projection of a stored tank record.
type TankView struct {
	ID           string
	Name         string
	Shape        string
	VolumeLiters float64
}

// PlanView is a read-only projection of a stored stocking plan. Selection is
// a copy; mutating it has no effect on the stored plan.
type PlanView struct {
	ID        string
	Name      string
	TankID    string
	Selection map[string]int
}

// FeedView is a read-only projection of a stored feed inventory item.
type FeedView struct {
	ID          string
	FeedType    string
	GramsOnHand float64
}

// RuleView exposes read-only reference data to plugin rules.
type RuleView interface {
	Species() []SpeciesView
	Tanks() []TankView
	Plans() []PlanView
	FeedItems() []FeedView
}

// Rule is a plugin-contributed advisory evaluated inside every transaction.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView) (Result, error)
}
