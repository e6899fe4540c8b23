package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"aquacore/internal/blob"
	"aquacore/internal/catalog"
	"aquacore/internal/core"
	"aquacore/internal/logging"
	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

func testLogger() *logging.Logger {
	return logging.FromZap(zap.NewNop())
}

func writePack(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
}

func TestOpenStoreSelectsDriver(t *testing.T) {
	engine := core.NewDefaultRulesEngine()

	store, err := openStore(defaultConfig(), engine)
	if err != nil || store == nil {
		t.Fatalf("memory store: %v", err)
	}

	cfg := defaultConfig()
	cfg.Persistence.Driver = string(core.StorageSQLite)
	cfg.Persistence.SQLitePath = filepath.Join(t.TempDir(), "aqua.db")
	store, err = openStore(cfg, engine)
	if err != nil || store == nil {
		t.Fatalf("sqlite store: %v", err)
	}

	cfg.Persistence.Driver = "etcd"
	if _, err := openStore(cfg, engine); err == nil || !strings.Contains(err.Error(), "unknown persistence driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestOpenBlobSelectsDriver(t *testing.T) {
	ctx := context.Background()

	cfg := defaultConfig()
	cfg.Blob.FSRoot = t.TempDir()
	store, err := openBlob(ctx, cfg)
	if err != nil {
		t.Fatalf("fs blob store: %v", err)
	}
	if store.Driver() != blob.DriverFilesystem {
		t.Fatalf("driver: %s", store.Driver())
	}

	cfg.Blob.Driver = string(blob.DriverMemory)
	store, err = openBlob(ctx, cfg)
	if err != nil {
		t.Fatalf("memory blob store: %v", err)
	}
	if store.Driver() != blob.DriverMemory {
		t.Fatalf("driver: %s", store.Driver())
	}

	cfg.Blob.Driver = "gcs"
	if _, err := openBlob(ctx, cfg); err == nil || !strings.Contains(err.Error(), "unknown blob driver") {
		t.Fatalf("expected unknown blob driver error, got %v", err)
	}
}

func TestNewServiceWiresPacksPluginsAndMetrics(t *testing.T) {
	ctx := context.Background()
	minTank := 30.0
	packs := catalog.New()
	packs.Put(domain.Species{
		CommonName:    "Pack Tetra",
		MaxSizeCm:     3,
		MinTankLiters: &minTank,
		Bioload:       0.5,
		Behavior:      domain.BehaviorSchooling,
	})

	svc, registry, err := newService(defaultConfig(), testLogger(), packs)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	report, err := svc.EvaluateStocking(ctx, stocking.Request{
		TankVolume:     60,
		TankShape:      "rectangle",
		FishSelections: map[string]int{"Guppy": 3, "Pack Tetra": 6},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(report.FishDetails) != 2 {
		t.Fatalf("fish details: %+v", report.FishDetails)
	}
	// 3 guppies at 0.5 plus 6 pack tetras at 0.5: both the plugin species and
	// the pack-catalog species resolved instead of falling back.
	if report.TankDetails.CurrentBioload != 4.5 {
		t.Fatalf("current bioload: %g", report.TankDetails.CurrentBioload)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	seen := false
	for _, family := range families {
		if family.GetName() == "aquacore_operations_total" {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("expected aquacore_operations_total after an evaluation")
	}
}

func TestStockingPolicyFlowsToEvaluation(t *testing.T) {
	ctx := context.Background()
	cfg := defaultConfig()
	cfg.Stocking.SchoolSize = 3

	svc, _, err := newService(cfg, testLogger(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	minTank := 60.0
	if _, _, err := svc.CreateSpecies(ctx, domain.Species{
		CommonName:    "Rummynose Tetra",
		MaxSizeCm:     5,
		MinTankLiters: &minTank,
		Bioload:       1,
		Behavior:      domain.BehaviorSchooling,
	}); err != nil {
		t.Fatalf("create species: %v", err)
	}

	report, err := svc.EvaluateStocking(ctx, stocking.Request{
		TankVolume:     120,
		TankShape:      "rectangle",
		FishSelections: map[string]int{"Rummynose Tetra": 1},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	// A school of 3 doubles the per-unit volume to 20 L, so 120 L holds 6
	// units and the typical tier is floor(6 * 1.2).
	if got := report.FishDetails[0].RecommendedQuantity; got != 7 {
		t.Fatalf("recommended quantity: %d", got)
	}
}

func TestLoadPacksInto(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "community.yaml", strings.Join([]string{
		"name: community",
		"version: 1",
		"species:",
		"  - common_name: Harlequin Rasbora",
		"    max_size_cm: 5",
		"    minimum_tank_size_l: 40",
		"    bioload: 0.5",
		"    social_behavior: schooling",
		"  - common_name: Cherry Barb",
		"    max_size_cm: 5",
		"",
	}, "\n"))

	c := catalog.New()
	count, err := loadPacksInto(c, dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}
	if count != 2 || c.Len() != 2 {
		t.Fatalf("species count: %d (catalog %d)", count, c.Len())
	}
	if _, ok, err := c.Lookup(context.Background(), "Harlequin Rasbora"); err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}

	if _, err := loadPacksInto(c, filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing pack dir")
	}
}
