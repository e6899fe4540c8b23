package core

import (
	"context"
	"fmt"

	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// NewTankShapeRule returns the in-transaction rule blocking plans that place a
// species in a tank whose geometry rejects it.
func NewTankShapeRule() domain.Rule {
	return tankShapeRule{}
}

type tankShapeRule struct{}

func (tankShapeRule) Name() string { return "tank_shape_compatibility" }

func (tankShapeRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, plan := range view.ListStockingPlans() {
		tank, ok := view.FindTank(plan.TankID)
		if !ok {
			// Dangling tank references are rejected by the store itself.
			continue
		}
		volume := tank.EffectiveVolumeLiters()
		for _, line := range planLines(view, plan) {
			reason, conflict := stocking.ShapeConflict(line.Species, tank.Shape, volume, line.Quantity)
			if !conflict {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "tank_shape_compatibility",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("plan %s: %s in %s tank %s: %s", plan.Name, line.Name, tank.Shape, tank.Name, reason),
				Entity:   domain.EntityStockingPlan,
				EntityID: plan.ID,
			})
		}
	}
	return res, nil
}
