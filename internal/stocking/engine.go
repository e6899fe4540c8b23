package stocking

import (
	"context"
	"fmt"
	"sort"

	"aquacore/pkg/domain"
)

// SpeciesSource resolves species attributes by common name. Implementations
// must be read-only; the engine treats returned records as immutable.
type SpeciesSource interface {
	Lookup(ctx context.Context, commonName string) (domain.Species, bool, error)
}

// PairClassifier supplies pairwise compatibility verdicts for unordered
// species name pairs.
type PairClassifier interface {
	Classify(ctx context.Context, a, b string) (Verdict, error)
}

// TankmateSource supplies per-species companion recommendation sets, split
// into fully compatible and conditionally compatible names.
type TankmateSource interface {
	Tankmates(ctx context.Context, commonName string) (full, conditional []string, err error)
}

// Engine evaluates stocking requests. It is pure and synchronous: all state
// lives in the request and in the injected read-only collaborators, so a
// single Engine is safe for concurrent use.
type Engine struct {
	species   SpeciesSource
	pairs     PairClassifier
	tankmates TankmateSource
	cfg       Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithPairClassifier injects the pairwise compatibility collaborator.
func WithPairClassifier(pc PairClassifier) Option {
	return func(e *Engine) { e.pairs = pc }
}

// WithTankmateSource injects the tankmate recommendation collaborator.
func WithTankmateSource(ts TankmateSource) Option {
	return func(e *Engine) { e.tankmates = ts }
}

// WithConfig overrides the stocking and forecast policy knobs. Zero fields
// keep their defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg.withDefaults() }
}

// New constructs an Engine over the given species source.
func New(species SpeciesSource, opts ...Option) *Engine {
	e := &Engine{species: species, cfg: Config{}.withDefaults()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is the engine invocation shape. Field names are stable for
// compatibility with existing callers.
type Request struct {
	TankVolume     float64            `json:"tank_volume"`
	TankShape      string             `json:"tank_shape"`
	FishSelections map[string]int     `json:"fish_selections"`
	FeedInventory  map[string]float64 `json:"feed_inventory,omitempty"`
}

// Report is the assembled evaluation result.
type Report struct {
	TankDetails         TankDetails             `json:"tank_details"`
	FishDetails         []FishDetail            `json:"fish_details"`
	TankShapeIssues     []ShapeIssue            `json:"tank_shape_issues,omitempty"`
	CompatibilityIssues []PairIssue             `json:"compatibility_issues,omitempty"`
	GlobalWarning       string                  `json:"global_warning,omitempty"`
	FeedForecast        map[string]FeedForecast `json:"feed_forecast,omitempty"`
}

// TankDetails summarizes the tank under the evaluated selection.
type TankDetails struct {
	Volume             string  `json:"volume"`
	Status             string  `json:"status"`
	CurrentBioload     float64 `json:"current_bioload"`
	RecommendedBioload float64 `json:"recommended_bioload"`
}

// Tank status values.
const (
	StatusOptimal      = "Optimal"
	StatusIncompatible = "Incompatible"
)

// FishDetail is the per-species recommendation row. RecommendedQuantity is
// the Typical tier, or zero when the species was rejected by shape or shared
// capacity.
type FishDetail struct {
	Name                string `json:"name"`
	RecommendedQuantity int    `json:"recommended_quantity"`
	StockingWarning     string `json:"stocking_warning,omitempty"`
}

// ShapeIssue reports a species rejected by tank geometry.
type ShapeIssue struct {
	FishName string  `json:"fish_name"`
	MaxSize  float64 `json:"max_size"`
	Reason   string  `json:"reason"`
}

// SelectedSpecies is one resolved line of a request selection: the catalog
// record (or documented fallback), the display name as requested, and the
// requested quantity.
type SelectedSpecies struct {
	domain.Species
	Name     string
	Quantity int
	Fallback bool
}

// FallbackSpecies returns the documented defaults substituted when a species
// is missing from the catalog: 10 cm adult size, 20 L minimum, baseline
// bioload, solitary behavior. Substitution is a normal result, not an error.
func FallbackSpecies(commonName string) domain.Species {
	minTank := 20.0
	return domain.Species{
		CommonName:    commonName,
		MaxSizeCm:     10,
		MinTankLiters: &minTank,
		Bioload:       1.0,
		Behavior:      domain.BehaviorSolitary,
	}
}

// ResolveSelection looks up every selected species, substituting fallback
// defaults for unknown names. Results are ordered by normalized name so the
// rest of the pipeline is deterministic regardless of map iteration order.
// Quantities below one are treated as one.
func (e *Engine) ResolveSelection(ctx context.Context, selections map[string]int) ([]SelectedSpecies, error) {
	names := make([]string, 0, len(selections))
	for name := range selections {
		if normalizeName(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return normalizeName(names[i]) < normalizeName(names[j]) })

	out := make([]SelectedSpecies, 0, len(names))
	for _, name := range names {
		quantity := selections[name]
		if quantity < 1 {
			quantity = 1
		}
		sp, ok, err := e.species.Lookup(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("lookup species %q: %w", name, err)
		}
		if !ok {
			sp = FallbackSpecies(name)
		}
		out = append(out, SelectedSpecies{Species: sp, Name: name, Quantity: quantity, Fallback: !ok})
	}
	return out, nil
}

// Evaluate runs the full pipeline: resolve the selection, shape-check each
// species, validate shared capacity, compute per-species tiers, aggregate
// pairwise compatibility, and forecast feed depletion.
func (e *Engine) Evaluate(ctx context.Context, req Request) (Report, error) {
	shape, err := domain.ParseTankShape(req.TankShape)
	if err != nil {
		return Report{}, err
	}
	volume := req.TankVolume
	if shape == domain.ShapeBowl {
		volume = domain.BowlVolumeLiters
	} else if volume <= 0 {
		return Report{}, InvalidDimensionError{Dimension: "tank_volume", Value: req.TankVolume}
	}

	report := Report{
		TankDetails: TankDetails{
			Volume:             fmt.Sprintf("%g L", volume),
			Status:             StatusOptimal,
			RecommendedBioload: volume / 10,
		},
		FishDetails: []FishDetail{},
	}

	// An empty selection is a no-op evaluation, not an error.
	selection, err := e.ResolveSelection(ctx, req.FishSelections)
	if err != nil {
		return Report{}, err
	}
	if len(selection) == 0 {
		return report, nil
	}

	for _, sel := range selection {
		report.TankDetails.CurrentBioload += effectiveBioload(sel.Species) * float64(sel.Quantity)
	}

	// Shape rejection zeroes the offending species but never aborts the
	// batch; every species is still shape-checked, and the shared-capacity
	// validator sees the full selection so a saturating species rejects the
	// combination even when it also failed the shape gate.
	rejected := make(map[string]bool)
	for _, sel := range selection {
		if reason, conflict := ShapeConflict(sel.Species, shape, volume, sel.Quantity); conflict {
			report.TankShapeIssues = append(report.TankShapeIssues, ShapeIssue{
				FishName: sel.Name,
				MaxSize:  sel.MaxSizeCm,
				Reason:   reason,
			})
			rejected[normalizeName(sel.Name)] = true
		}
	}

	capacityWarning, capacityRejected := e.SharedCapacityConflict(selection, volume)
	if capacityRejected {
		report.GlobalWarning = capacityWarning
	}

	for _, sel := range selection {
		detail := FishDetail{Name: sel.Name}
		if !rejected[normalizeName(sel.Name)] && !capacityRejected {
			tiers := e.Tiers(sel.Species, volume)
			detail.RecommendedQuantity = tiers.Typical
			detail.StockingWarning = tiers.Warning
		}
		report.FishDetails = append(report.FishDetails, detail)
	}

	incompatible, conditional, err := e.AggregatePairs(ctx, flattenSelection(selection))
	if err != nil {
		return Report{}, err
	}
	report.CompatibilityIssues = append(incompatible, conditional...)

	report.FeedForecast = e.Forecast(selection, req.FeedInventory)

	if capacityRejected || len(incompatible) > 0 || len(report.TankShapeIssues) > 0 {
		report.TankDetails.Status = StatusIncompatible
	}
	return report, nil
}

// flattenSelection expands the selection into the per-quantity name multiset
// the pair aggregator is specified against.
func flattenSelection(selection []SelectedSpecies) []string {
	var names []string
	for _, sel := range selection {
		for i := 0; i < sel.Quantity; i++ {
			names = append(names, sel.Name)
		}
	}
	return names
}
