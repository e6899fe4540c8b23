package memory_test

import (
	"aquacore/internal/infra/persistence/memory"
	"aquacore/pkg/domain"
	"context"
	"errors"
	"strings"
	"testing"
)

type seededIDs struct {
	speciesID string
	tankID    string
	planID    string
	feedID    string
}

func seedStore(t *testing.T, store *memory.Store) seededIDs {
	t.Helper()
	ctx := context.Background()
	var ids seededIDs
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		minTank := 60.0
		sp, err := tx.CreateSpecies(domain.Species{
			CommonName:    "Neon Tetra",
			MaxSizeCm:     4,
			MinTankLiters: &minTank,
			Bioload:       1,
			Behavior:      domain.BehaviorSchooling,
			PreferredFood: "flakes",
		})
		if err != nil {
			return err
		}
		ids.speciesID = sp.ID

		tank, err := tx.CreateTank(domain.Tank{Name: "Display", Shape: domain.ShapeRectangle, LengthCm: 100, WidthCm: 40, HeightCm: 50, VolumeLiters: 200})
		if err != nil {
			return err
		}
		ids.tankID = tank.ID

		plan, err := tx.CreateStockingPlan(domain.StockingPlan{
			Name:      "Community build",
			TankID:    tank.ID,
			Selection: map[string]int{"Neon Tetra": 12},
		})
		if err != nil {
			return err
		}
		ids.planID = plan.ID

		feed, err := tx.CreateFeedItem(domain.FeedItem{FeedType: "flakes", GramsOnHand: 250})
		if err != nil {
			return err
		}
		ids.feedID = feed.ID
		return nil
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return ids
}

func TestMemoryStoreCRUDAndGuards(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	ids := seedStore(t, store)

	if got := len(store.ListSpecies()); got != 1 {
		t.Fatalf("expected 1 species, got %d", got)
	}
	if got := len(store.ListTanks()); got != 1 {
		t.Fatalf("expected 1 tank, got %d", got)
	}
	if got := len(store.ListStockingPlans()); got != 1 {
		t.Fatalf("expected 1 plan, got %d", got)
	}
	if got := len(store.ListFeedItems()); got != 1 {
		t.Fatalf("expected 1 feed item, got %d", got)
	}

	// A plan pointing at an unknown tank must be rejected at create time.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateStockingPlan(domain.StockingPlan{Name: "Orphan", TankID: "missing-tank"})
		return err
	}); err == nil {
		t.Fatalf("expected missing tank rejection")
	} else {
		var notFound domain.ErrNotFound
		if !errors.As(err, &notFound) || notFound.Entity != domain.EntityTank {
			t.Fatalf("expected tank not-found error, got %v", err)
		}
	}

	// Referenced entities cannot be deleted.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteTank(ids.tankID)
	}); err == nil || !strings.Contains(err.Error(), "still referenced") {
		t.Fatalf("expected referenced tank delete to fail, got %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteSpecies(ids.speciesID)
	}); err == nil || !strings.Contains(err.Error(), "still referenced") {
		t.Fatalf("expected referenced species delete to fail, got %v", err)
	}

	// Updates flow through mutators and bump UpdatedAt.
	before, _ := store.GetFeedItem(ids.feedID)
	updated, _, err := runUpdateFeed(ctx, store, ids.feedID, 180)
	if err != nil {
		t.Fatalf("update feed: %v", err)
	}
	if updated.GramsOnHand != 180 {
		t.Fatalf("expected updated grams, got %g", updated.GramsOnHand)
	}
	if updated.UpdatedAt.Before(before.UpdatedAt) {
		t.Fatalf("expected UpdatedAt to move forward")
	}

	// Deleting the plan releases both guards.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteStockingPlan(ids.planID)
	}); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if err := tx.DeleteSpecies(ids.speciesID); err != nil {
			return err
		}
		if err := tx.DeleteTank(ids.tankID); err != nil {
			return err
		}
		return tx.DeleteFeedItem(ids.feedID)
	}); err != nil {
		t.Fatalf("cleanup deletes: %v", err)
	}

	if len(store.ListSpecies()) != 0 || len(store.ListTanks()) != 0 || len(store.ListStockingPlans()) != 0 || len(store.ListFeedItems()) != 0 {
		t.Fatalf("expected empty store after cleanup")
	}
}

func runUpdateFeed(ctx context.Context, store *memory.Store, id string, grams float64) (domain.FeedItem, domain.Result, error) {
	var updated domain.FeedItem
	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateFeedItem(id, func(f *domain.FeedItem) error {
			f.GramsOnHand = grams
			return nil
		})
		return err
	})
	return updated, res, err
}

func TestStockingPlanRetargetValidatesTank(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	ids := seedStore(t, store)

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateStockingPlan(ids.planID, func(p *domain.StockingPlan) error {
			p.TankID = "missing-tank"
			return nil
		})
		return err
	}); err == nil {
		t.Fatalf("expected retarget to missing tank to fail")
	}

	// Retargeting to an existing tank works.
	var secondTank domain.Tank
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		secondTank, err = tx.CreateTank(domain.Tank{Name: "Quarantine", Shape: domain.ShapeCylinder, DiameterCm: 40, HeightCm: 50, VolumeLiters: 60})
		return err
	}); err != nil {
		t.Fatalf("create second tank: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateStockingPlan(ids.planID, func(p *domain.StockingPlan) error {
			p.TankID = secondTank.ID
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("retarget plan: %v", err)
	}
	plan, ok := store.GetStockingPlan(ids.planID)
	if !ok || plan.TankID != secondTank.ID {
		t.Fatalf("expected plan to point at new tank, got %+v", plan)
	}
}
