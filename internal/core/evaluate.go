package core

import (
	"context"
	"time"

	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// StockingConfig carries the stocking policy knobs (school size, recommendation
// cap, forecast thresholds).
type StockingConfig = stocking.Config

// EvaluateRequest is the stocking evaluation input shape.
type EvaluateRequest = stocking.Request

// EvaluateReport is the stocking evaluation output shape.
type EvaluateReport = stocking.Report

// storeSpeciesSource resolves species by common name from the persistent
// store's committed state.
type storeSpeciesSource struct {
	store domain.PersistentStore
}

func (src storeSpeciesSource) Lookup(ctx context.Context, commonName string) (domain.Species, bool, error) {
	var (
		sp    domain.Species
		found bool
	)
	err := src.store.View(ctx, func(view domain.TransactionView) error {
		if got, ok := view.FindSpeciesByName(commonName); ok {
			sp = got
			found = true
		}
		return nil
	})
	if err != nil {
		return domain.Species{}, false, err
	}
	return sp, found, nil
}

// chainSpeciesSource tries each source in order and returns the first hit.
type chainSpeciesSource []stocking.SpeciesSource

func (c chainSpeciesSource) Lookup(ctx context.Context, commonName string) (domain.Species, bool, error) {
	for _, src := range c {
		if src == nil {
			continue
		}
		sp, ok, err := src.Lookup(ctx, commonName)
		if err != nil {
			return domain.Species{}, false, err
		}
		if ok {
			return sp, true, nil
		}
	}
	return domain.Species{}, false, nil
}

// stockingEngine assembles the evaluation pipeline: store records first, then
// plugin-contributed catalog entries, then any registered extra sources, with
// plugin compatibility data driving the pair and tankmate collaborators.
func (s *Service) stockingEngine() *stocking.Engine {
	chain := make(chainSpeciesSource, 0, 2+len(s.sources))
	chain = append(chain, storeSpeciesSource{store: s.store}, s.catalog.species)
	chain = append(chain, s.sources...)
	return stocking.New(
		chain,
		stocking.WithPairClassifier(s.catalog.pairs),
		stocking.WithTankmateSource(s.catalog.tankmates),
		stocking.WithConfig(s.stocking),
	)
}

// EvaluateStocking runs the stocking pipeline over the request: shape gating,
// per-species recommendation tiers, shared capacity, pairwise compatibility,
// and feed depletion forecasting.
func (s *Service) EvaluateStocking(ctx context.Context, req stocking.Request) (stocking.Report, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, opEvaluateStocking)
	report, err := s.stockingEngine().Evaluate(ctx, req)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, opEvaluateStocking, err == nil, duration)
	if err != nil {
		s.logger.Error("stocking evaluation failed", "error", err)
		return stocking.Report{}, err
	}
	s.logger.Debug("stocking evaluation completed",
		"status", report.TankDetails.Status,
		"species", len(report.FishDetails),
		"shape_issues", len(report.TankShapeIssues),
		"pair_issues", len(report.CompatibilityIssues),
	)
	return report, nil
}

// EvaluatePlan evaluates a stored stocking plan against its tank and the full
// feed inventory.
func (s *Service) EvaluatePlan(ctx context.Context, planID string) (stocking.Report, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, opEvaluatePlan)
	report, err := s.evaluatePlan(ctx, planID)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, opEvaluatePlan, err == nil, duration)
	if err != nil {
		s.logger.Error("plan evaluation failed", "plan_id", planID, "error", err)
		return stocking.Report{}, err
	}
	s.logger.Debug("plan evaluation completed", "plan_id", planID, "status", report.TankDetails.Status)
	return report, nil
}

func (s *Service) evaluatePlan(ctx context.Context, planID string) (stocking.Report, error) {
	req, err := s.planRequest(ctx, planID)
	if err != nil {
		return stocking.Report{}, err
	}
	return s.stockingEngine().Evaluate(ctx, req)
}

// planRequest builds the evaluation request for a stored plan: the tank's
// effective volume and shape, the plan selection, and the grams on hand per
// feed type summed across inventory items.
func (s *Service) planRequest(ctx context.Context, planID string) (stocking.Request, error) {
	var req stocking.Request
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		plan, ok := view.FindStockingPlan(planID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityStockingPlan, ID: planID}
		}
		tank, ok := view.FindTank(plan.TankID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityTank, ID: plan.TankID}
		}
		req = stocking.Request{
			TankVolume:     tank.EffectiveVolumeLiters(),
			TankShape:      string(tank.Shape),
			FishSelections: plan.Selection,
			FeedInventory:  make(map[string]float64),
		}
		for _, feed := range view.ListFeedItems() {
			req.FeedInventory[feed.FeedType] += feed.GramsOnHand
		}
		return nil
	})
	if err != nil {
		return stocking.Request{}, err
	}
	return req, nil
}
