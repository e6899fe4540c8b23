package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	core "aquacore/internal/core"
	domain "aquacore/pkg/domain"
)

func strPtr(v string) *string {
	return &v
}

// TestIntegrationPlanLifecycle walks the full reference-data lifecycle against
// every in-process store: dangling references rejected, duplicate names
// rejected, rule warnings surfacing and clearing as inventory changes,
// blocking rules vetoing commits, and deletes refused while records are still
// referenced.
func TestIntegrationPlanLifecycle(t *testing.T) {
	ctx := context.Background()

	coreVariants := []struct {
		name string
		open func(t *testing.T) domain.PersistentStore
	}{
		{
			name: "memory-store",
			open: func(_ *testing.T) domain.PersistentStore {
				return core.NewMemoryStore(core.NewDefaultRulesEngine())
			},
		},
		{
			name: "sqlite-store",
			open: func(t *testing.T) domain.PersistentStore {
				path := filepath.Join(t.TempDir(), "lifecycle.db")
				store, err := core.NewSQLiteStore(path, core.NewDefaultRulesEngine())
				if err != nil {
					t.Fatalf("new sqlite store: %v", err)
				}
				return store
			},
		},
	}

	for _, variant := range coreVariants {
		t.Run(variant.name, func(t *testing.T) {
			store := variant.open(t)
			svc := core.NewService(store)

			tank, res, err := svc.CreateTank(ctx, domain.Tank{
				Name:         "Community 240",
				Shape:        domain.ShapeRectangle,
				LengthCm:     120,
				WidthCm:      40,
				HeightCm:     50,
				VolumeLiters: 240,
			})
			if err != nil {
				t.Fatalf("create tank: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected tank violations: %+v", res.Violations)
			}

			if _, _, err := svc.CreateStockingPlan(ctx, domain.StockingPlan{
				Name:      "Dangling",
				TankID:    "missing-tank",
				Selection: map[string]int{"Neon Tetra": 6},
			}); err == nil {
				t.Fatalf("expected plan creation to fail for missing tank")
			}

			tetra, res, err := svc.CreateSpecies(ctx, domain.Species{
				CommonName:       "Neon Tetra",
				MaxSizeCm:        4,
				MinTankLiters:    litersPtr(40),
				Bioload:          0.5,
				Behavior:         domain.BehaviorSchooling,
				Temperament:      "peaceful",
				PreferredFood:    "flake food",
				PortionGrams:     0.3,
				FeedingFrequency: 2,
			})
			if err != nil {
				t.Fatalf("create species: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected species violations: %+v", res.Violations)
			}

			// Common names are unique ignoring case.
			if _, _, err := svc.CreateSpecies(ctx, domain.Species{
				CommonName: "neon tetra",
				MaxSizeCm:  4,
				Bioload:    0.5,
				Behavior:   domain.BehaviorSchooling,
			}); err == nil {
				t.Fatalf("expected duplicate species name to fail")
			}

			// With nothing in feed inventory the plan commits with exactly the
			// coverage warning.
			plan, res, err := svc.CreateStockingPlan(ctx, domain.StockingPlan{
				Name:      "Shoal",
				TankID:    tank.ID,
				Selection: map[string]int{"Neon Tetra": 6},
			})
			if err != nil {
				t.Fatalf("create plan: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected blocking plan violations: %+v", res.Violations)
			}
			if len(res.Violations) != 1 || res.Violations[0].Rule != "feed_coverage" || res.Violations[0].Severity != domain.SeverityWarn {
				t.Fatalf("expected single feed_coverage warning, got %+v", res.Violations)
			}

			// Stocking the matching feed clears the warning on the next commit.
			flakes, res, err := svc.CreateFeedItem(ctx, domain.FeedItem{
				FeedType:    "Flakes",
				GramsOnHand: 500,
			})
			if err != nil {
				t.Fatalf("create feed: %v", err)
			}
			if len(res.Violations) != 0 {
				t.Fatalf("expected coverage warning cleared, got %+v", res.Violations)
			}

			if _, _, err := svc.CreateFeedItem(ctx, domain.FeedItem{FeedType: "   "}); err == nil {
				t.Fatalf("expected blank feed type to fail")
			}

			oscar, res, err := svc.CreateSpecies(ctx, domain.Species{
				CommonName:    "Oscar",
				MaxSizeCm:     35,
				MinTankLiters: litersPtr(210),
				Bioload:       5,
				Behavior:      domain.BehaviorPredatory,
				Temperament:   "aggressive",
				PreferredFood: "live food",
			})
			if err != nil {
				t.Fatalf("create oscar: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected oscar violations: %+v", res.Violations)
			}

			bowl, res, err := svc.CreateTank(ctx, domain.Tank{Name: "Desk Bowl", Shape: domain.ShapeBowl})
			if err != nil {
				t.Fatalf("create bowl: %v", err)
			}
			if res.HasBlocking() {
				t.Fatalf("unexpected bowl violations: %+v", res.Violations)
			}

			// A 35 cm predator in a bowl trips the shape rule, which vetoes the
			// whole transaction.
			_, res, err = svc.CreateStockingPlan(ctx, domain.StockingPlan{
				Name:      "Bowl oscar",
				TankID:    bowl.ID,
				Selection: map[string]int{"Oscar": 1},
			})
			if err == nil {
				t.Fatalf("expected bowl plan to be blocked")
			}
			var rve domain.RuleViolationError
			if !errors.As(err, &rve) {
				t.Fatalf("expected rule violation error, got %v", err)
			}
			if !res.HasBlocking() {
				t.Fatalf("expected blocking violations, got %+v", res.Violations)
			}
			if res.Violations[0].Rule != "tank_shape_compatibility" {
				t.Fatalf("expected shape violation first, got %+v", res.Violations)
			}
			if plans := store.ListStockingPlans(); len(plans) != 1 {
				t.Fatalf("expected blocked plan discarded, got %d plans", len(plans))
			}

			// Benign update commits.
			if _, res, err := svc.UpdateStockingPlan(ctx, plan.ID, func(p *domain.StockingPlan) error {
				p.Notes = strPtr("six is plenty")
				return nil
			}); err != nil {
				t.Fatalf("update plan notes: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected update violations: %+v", res.Violations)
			}

			// Growing the school past the tank's total footprint is vetoed and
			// leaves the committed plan untouched.
			if _, _, err := svc.UpdateStockingPlan(ctx, plan.ID, func(p *domain.StockingPlan) error {
				p.Selection["Neon Tetra"] = 7
				return nil
			}); err == nil {
				t.Fatalf("expected oversized update to be blocked")
			}
			got, ok := store.GetStockingPlan(plan.ID)
			if !ok || got.Selection["Neon Tetra"] != 6 {
				t.Fatalf("expected plan unchanged after blocked update, got %+v ok=%v", got, ok)
			}
			if got.Notes == nil || *got.Notes != "six is plenty" {
				t.Fatalf("expected earlier notes retained, got %+v", got.Notes)
			}

			if _, err := svc.DeleteTank(ctx, tank.ID); err == nil {
				t.Fatalf("expected tank delete to fail while plan exists")
			}
			if _, err := svc.DeleteSpecies(ctx, tetra.ID); err == nil {
				t.Fatalf("expected species delete to fail while plan selects it")
			}
			if _, err := svc.DeleteFeedItem(ctx, "missing-feed"); err == nil {
				t.Fatalf("expected missing feed delete to fail")
			}

			if res, err := svc.DeleteStockingPlan(ctx, plan.ID); err != nil {
				t.Fatalf("delete plan: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected plan delete violations: %+v", res.Violations)
			}

			if res, err := svc.DeleteSpecies(ctx, tetra.ID); err != nil {
				t.Fatalf("delete tetra: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected tetra delete violations: %+v", res.Violations)
			}

			if res, err := svc.DeleteTank(ctx, tank.ID); err != nil {
				t.Fatalf("delete tank: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected tank delete violations: %+v", res.Violations)
			}

			if res, err := svc.DeleteSpecies(ctx, oscar.ID); err != nil {
				t.Fatalf("delete oscar: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected oscar delete violations: %+v", res.Violations)
			}

			if res, err := svc.DeleteTank(ctx, bowl.ID); err != nil {
				t.Fatalf("delete bowl: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected bowl delete violations: %+v", res.Violations)
			}

			if res, err := svc.DeleteFeedItem(ctx, flakes.ID); err != nil {
				t.Fatalf("delete feed: %v", err)
			} else if res.HasBlocking() {
				t.Fatalf("unexpected feed delete violations: %+v", res.Violations)
			}

			if n := len(store.ListSpecies()); n != 0 {
				t.Fatalf("expected empty species listing, got %d", n)
			}
			if n := len(store.ListTanks()); n != 0 {
				t.Fatalf("expected empty tank listing, got %d", n)
			}
			if n := len(store.ListStockingPlans()); n != 0 {
				t.Fatalf("expected empty plan listing, got %d", n)
			}
			if n := len(store.ListFeedItems()); n != 0 {
				t.Fatalf("expected empty feed listing, got %d", n)
			}
		})
	}
}
