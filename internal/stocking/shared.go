package stocking

import (
	"fmt"

	"aquacore/pkg/domain"
)

// SharedCapacityConflict decides whether a multi-species selection can
// coexist in the tank at all. It applies only to selections of two or more
// distinct species and runs before any per-species tier is produced. The
// returned warning is a structured result state, never an error: callers
// zero every recommendation and surface the warning.
//
// Two rejection conditions, checked in order:
//  1. single-species saturation: one species' raw minimum alone meets or
//     exceeds the tank volume, leaving no shared capacity;
//  2. combined-minimum overflow: the schooling-aware per-unit volumes of one
//     individual of each species sum past the tank volume.
func (e *Engine) SharedCapacityConflict(selection []SelectedSpecies, tankVolumeL float64) (string, bool) {
	if countDistinct(selection) < 2 {
		return "", false
	}

	for _, sel := range selection {
		if minimum := requiredLiters(sel.Species); minimum >= tankVolumeL {
			return fmt.Sprintf("%s alone requires %.0f L, leaving no shared capacity in a %.0f L tank; this combination cannot be stocked together",
				sel.Name, minimum, tankVolumeL), true
		}
	}

	var combined float64
	for _, sel := range selection {
		combined += e.sharedPerUnitLiters(sel.Species)
	}
	if combined > tankVolumeL {
		return fmt.Sprintf("the selected species need at least %.0f L combined for one of each, but the tank offers %.0f L",
			combined, tankVolumeL), true
	}
	return "", false
}

// sharedPerUnitLiters is the one-individual volume contribution used by the
// combined-minimum check: schooling species divide their group baseline by
// the school size, everything else contributes its raw minimum.
func (e *Engine) sharedPerUnitLiters(sp domain.Species) float64 {
	minimum := requiredLiters(sp)
	if sp.Behavior == domain.BehaviorSchooling {
		return minimum / float64(e.cfg.SchoolSize)
	}
	return minimum
}

func countDistinct(selection []SelectedSpecies) int {
	seen := make(map[string]struct{}, len(selection))
	for _, sel := range selection {
		seen[normalizeName(sel.Name)] = struct{}{}
	}
	return len(seen)
}
