package core

import (
	"sort"
	"strings"

	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// NewRulesEngine returns an empty rules engine.
func NewRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine returns a rules engine preloaded with the stocking
// rules: tank shape compatibility and shared capacity block commits, feed
// coverage warns.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewTankShapeRule())
	engine.Register(NewSharedCapacityRule())
	engine.Register(NewFeedCoverageRule())
	return engine
}

// planLines resolves a plan's selection against the view's species records,
// substituting documented fallback defaults for names the view does not hold.
// Lines come out ordered by name so rule output is deterministic regardless of
// selection map iteration order. Quantities below one count as one.
func planLines(view domain.RuleView, plan domain.StockingPlan) []stocking.SelectedSpecies {
	names := make([]string, 0, len(plan.Selection))
	for name := range plan.Selection {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]stocking.SelectedSpecies, 0, len(names))
	for _, name := range names {
		quantity := plan.Selection[name]
		if quantity < 1 {
			quantity = 1
		}
		sp, ok := view.FindSpeciesByName(name)
		if !ok {
			sp = stocking.FallbackSpecies(name)
		}
		lines = append(lines, stocking.SelectedSpecies{Species: sp, Name: name, Quantity: quantity, Fallback: !ok})
	}
	return lines
}
