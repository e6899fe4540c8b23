package memory

import "testing"

func TestMigrateSnapshotInitialisesAndFilters(t *testing.T) {
	snapshot := Snapshot{
		Species: map[string]Species{
			"sp-1": {CommonName: "Mystery Snail", Bioload: 0},
		},
		Plans: map[string]StockingPlan{
			"plan-orphan": {TankID: "missing-tank"},
		},
	}

	migrated := migrateSnapshot(snapshot)

	if migrated.Tanks == nil || migrated.Feeds == nil {
		t.Fatalf("expected migrateSnapshot to initialise nil maps")
	}
	if len(migrated.Plans) != 0 {
		t.Fatalf("expected plans with missing tanks to be dropped, got %d", len(migrated.Plans))
	}
	if migrated.Species["sp-1"].Bioload != 1 {
		t.Fatalf("expected non-positive bioload to reset to 1, got %g", migrated.Species["sp-1"].Bioload)
	}
}

func TestMigrateSnapshotKeepsValidPlans(t *testing.T) {
	snapshot := Snapshot{
		Tanks: map[string]Tank{
			"tank-1": {Name: "Display", Shape: "rectangle", VolumeLiters: 200},
		},
		Plans: map[string]StockingPlan{
			"plan-1": {TankID: "tank-1"},
		},
	}

	migrated := migrateSnapshot(snapshot)

	plan, ok := migrated.Plans["plan-1"]
	if !ok {
		t.Fatalf("expected valid plan to survive migration")
	}
	if plan.Selection == nil {
		t.Fatalf("expected nil selection to be initialised")
	}
}
