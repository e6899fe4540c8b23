package core

import (
	"context"
	"fmt"

	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// NewSharedCapacityRule returns the in-transaction rule blocking plans whose
// combined selection exceeds the tank's shared capacity.
func NewSharedCapacityRule() domain.Rule {
	return NewSharedCapacityRuleWithConfig(stocking.Config{})
}

// NewSharedCapacityRuleWithConfig is NewSharedCapacityRule with explicit
// stocking policy knobs.
func NewSharedCapacityRuleWithConfig(cfg stocking.Config) domain.Rule {
	return sharedCapacityRule{engine: stocking.New(nil, stocking.WithConfig(cfg))}
}

type sharedCapacityRule struct {
	engine *stocking.Engine
}

func (sharedCapacityRule) Name() string { return "shared_capacity" }

func (r sharedCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, plan := range view.ListStockingPlans() {
		tank, ok := view.FindTank(plan.TankID)
		if !ok {
			continue
		}
		selection := planLines(view, plan)
		if len(selection) == 0 {
			continue
		}
		warning, rejected := r.engine.SharedCapacityConflict(selection, tank.EffectiveVolumeLiters())
		if !rejected {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "shared_capacity",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("plan %s in tank %s: %s", plan.Name, tank.Name, warning),
			Entity:   domain.EntityStockingPlan,
			EntityID: plan.ID,
		})
	}
	return res, nil
}
