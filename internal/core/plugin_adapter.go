package core

import (
	"context"

	"aquacore/pkg/domain"
	"aquacore/pkg/stockpluginapi"
)

// adaptPluginRule wraps a facade rule in the domain rule contract, projecting
// the transaction view into facade records on each evaluation.
func adaptPluginRule(rule stockpluginapi.Rule) domain.Rule {
	if rule == nil {
		return nil
	}
	return pluginRuleAdapter{impl: rule}
}

type pluginRuleAdapter struct {
	impl stockpluginapi.Rule
}

func (a pluginRuleAdapter) Name() string { return a.impl.Name() }

func (a pluginRuleAdapter) Evaluate(ctx context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res, err := a.impl.Evaluate(ctx, ruleViewAdapter{view: view})
	if err != nil {
		return domain.Result{}, err
	}
	return toDomainResult(res), nil
}

type ruleViewAdapter struct {
	view domain.RuleView
}

func (a ruleViewAdapter) Species() []stockpluginapi.SpeciesView {
	records := a.view.ListSpecies()
	out := make([]stockpluginapi.SpeciesView, 0, len(records))
	for _, sp := range records {
		out = append(out, toSpeciesView(sp))
	}
	return out
}

func (a ruleViewAdapter) Tanks() []stockpluginapi.TankView {
	records := a.view.ListTanks()
	out := make([]stockpluginapi.TankView, 0, len(records))
	for _, tank := range records {
		out = append(out, stockpluginapi.TankView{
			ID:           tank.ID,
			Name:         tank.Name,
			Shape:        string(tank.Shape),
			VolumeLiters: tank.EffectiveVolumeLiters(),
		})
	}
	return out
}

func (a ruleViewAdapter) Plans() []stockpluginapi.PlanView {
	records := a.view.ListStockingPlans()
	out := make([]stockpluginapi.PlanView, 0, len(records))
	for _, plan := range records {
		selection := make(map[string]int, len(plan.Selection))
		for name, quantity := range plan.Selection {
			selection[name] = quantity
		}
		out = append(out, stockpluginapi.PlanView{
			ID:        plan.ID,
			Name:      plan.Name,
			TankID:    plan.TankID,
			Selection: selection,
		})
	}
	return out
}

func (a ruleViewAdapter) FeedItems() []stockpluginapi.FeedView {
	records := a.view.ListFeedItems()
	out := make([]stockpluginapi.FeedView, 0, len(records))
	for _, feed := range records {
		out = append(out, stockpluginapi.FeedView{
			ID:          feed.ID,
			FeedType:    feed.FeedType,
			GramsOnHand: feed.GramsOnHand,
		})
	}
	return out
}

func toSpeciesView(sp domain.Species) stockpluginapi.SpeciesView {
	view := stockpluginapi.SpeciesView{
		ID:               sp.ID,
		CommonName:       sp.CommonName,
		MaxSizeCm:        sp.MaxSizeCm,
		Bioload:          sp.Bioload,
		Behavior:         string(sp.Behavior),
		BehaviorDetail:   sp.BehaviorDetail,
		Temperament:      sp.Temperament,
		PreferredFood:    sp.PreferredFood,
		PortionGrams:     sp.PortionGrams,
		FeedingFrequency: sp.FeedingFrequency,
	}
	if sp.ScientificName != nil {
		view.ScientificName = *sp.ScientificName
	}
	if sp.MinTankLiters != nil {
		view.MinTankLiters = *sp.MinTankLiters
	}
	return view
}

func toDomainResult(res stockpluginapi.Result) domain.Result {
	out := domain.Result{}
	for _, v := range res.Violations {
		out.Violations = append(out.Violations, domain.Violation{
			Rule:     v.Rule,
			Severity: toDomainSeverity(v.Severity),
			Message:  v.Message,
			Entity:   toDomainEntity(v.Entity),
			EntityID: v.EntityID,
		})
	}
	return out
}

// toDomainSeverity maps facade severities onto the closed domain enum.
// Unknown values degrade to log rather than gaining blocking power.
func toDomainSeverity(s stockpluginapi.Severity) domain.Severity {
	switch s {
	case stockpluginapi.SeverityBlock:
		return domain.SeverityBlock
	case stockpluginapi.SeverityWarn:
		return domain.SeverityWarn
	default:
		return domain.SeverityLog
	}
}

func toDomainEntity(entity string) domain.EntityType {
	switch entity {
	case stockpluginapi.EntitySpecies:
		return domain.EntitySpecies
	case stockpluginapi.EntityTank:
		return domain.EntityTank
	case stockpluginapi.EntityStockingPlan:
		return domain.EntityStockingPlan
	case stockpluginapi.EntityFeedItem:
		return domain.EntityFeedItem
	default:
		return ""
	}
}
