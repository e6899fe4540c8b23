package freshwater

import (
	"context"
	"testing"

	"aquacore/internal/core"
	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

func TestPluginRegistration(t *testing.T) {
	plugin := New()
	registry := core.NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		t.Fatalf("register plugin: %v", err)
	}

	species := registry.Species()
	if len(species) != 10 {
		t.Fatalf("expected 10 species records, got %d", len(species))
	}
	byName := make(map[string]domain.Species, len(species))
	for _, sp := range species {
		byName[sp.CommonName] = sp
	}

	neon, ok := byName["Neon Tetra"]
	if !ok {
		t.Fatalf("expected Neon Tetra to be registered")
	}
	if neon.Behavior != domain.BehaviorSchooling {
		t.Fatalf("expected schooling behavior, got %s", neon.Behavior)
	}
	if neon.BehaviorDetail != "schooling, keep in groups of six or more" {
		t.Fatalf("unexpected behavior detail %q", neon.BehaviorDetail)
	}
	if neon.ScientificName == nil || *neon.ScientificName != "Paracheirodon innesi" {
		t.Fatalf("unexpected scientific name %v", neon.ScientificName)
	}
	if neon.MinTankLiters == nil || *neon.MinTankLiters != 40 {
		t.Fatalf("unexpected minimum tank volume %v", neon.MinTankLiters)
	}
	if neon.Bioload != 0.5 {
		t.Fatalf("unexpected bioload %g", neon.Bioload)
	}

	if betta := byName["Betta"]; betta.Behavior != domain.BehaviorTerritorial {
		t.Fatalf("expected territorial betta, got %s", betta.Behavior)
	}
	if oscar := byName["Oscar"]; oscar.Behavior != domain.BehaviorPredatory {
		t.Fatalf("expected predatory oscar, got %s", oscar.Behavior)
	}

	rules := registry.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected one advisory rule, got %d", len(rules))
	}
	if rules[0].Name() != "betta_single_male" {
		t.Fatalf("unexpected rule name %s", rules[0].Name())
	}
}

func TestBettaRuleOutcomes(t *testing.T) {
	svc := core.NewInMemoryService(core.NewRulesEngine())
	if _, err := svc.InstallPlugin(New()); err != nil {
		t.Fatalf("install freshwater plugin: %v", err)
	}
	ctx := context.Background()

	tank, _, err := svc.CreateTank(ctx, domain.Tank{Name: "Planted 60", Shape: domain.ShapeRectangle, VolumeLiters: 60})
	if err != nil {
		t.Fatalf("create tank: %v", err)
	}

	single, res, err := svc.CreateStockingPlan(ctx, domain.StockingPlan{
		Name:      "Centrepiece",
		TankID:    tank.ID,
		Selection: map[string]int{"Betta": 1, "Bronze Corydoras": 6},
	})
	if err != nil {
		t.Fatalf("create single-betta plan: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected no advisory for a single betta, got %+v", res.Violations)
	}
	if _, err := svc.DeleteStockingPlan(ctx, single.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}

	sorority, res, err := svc.CreateStockingPlan(ctx, domain.StockingPlan{
		Name:      "Sorority",
		TankID:    tank.ID,
		Selection: map[string]int{"Betta": 3},
	})
	if err != nil {
		t.Fatalf("create multi-betta plan: %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("expected one advisory, got %+v", res.Violations)
	}
	violation := res.Violations[0]
	if violation.Rule != "betta_single_male" {
		t.Fatalf("unexpected rule %s", violation.Rule)
	}
	if violation.Severity != domain.SeverityWarn {
		t.Fatalf("expected warning severity, got %s", violation.Severity)
	}
	if violation.EntityID != sorority.ID {
		t.Fatalf("expected advisory bound to plan %s, got %s", sorority.ID, violation.EntityID)
	}
}

func TestPairVerdictsDriveEvaluation(t *testing.T) {
	svc := core.NewInMemoryService(core.NewRulesEngine())
	if _, err := svc.InstallPlugin(New()); err != nil {
		t.Fatalf("install freshwater plugin: %v", err)
	}
	ctx := context.Background()

	report, err := svc.EvaluateStocking(ctx, stocking.Request{
		TankVolume:     250,
		TankShape:      "rectangle",
		FishSelections: map[string]int{"Oscar": 1, "Neon Tetra": 1},
	})
	if err != nil {
		t.Fatalf("evaluate oscar pairing: %v", err)
	}
	if report.TankDetails.Status != stocking.StatusIncompatible {
		t.Fatalf("expected incompatible verdict, got %s", report.TankDetails.Status)
	}
	if len(report.CompatibilityIssues) != 1 {
		t.Fatalf("expected one pair issue, got %+v", report.CompatibilityIssues)
	}
	issue := report.CompatibilityIssues[0]
	if issue.Pair != [2]string{"Neon Tetra", "Oscar"} {
		t.Fatalf("unexpected pair %v", issue.Pair)
	}
	if len(issue.Reasons) != 1 || issue.Reasons[0] != "oscars eat any fish that fits their mouth" {
		t.Fatalf("unexpected reasons %v", issue.Reasons)
	}

	report, err = svc.EvaluateStocking(ctx, stocking.Request{
		TankVolume:     75,
		TankShape:      "rectangle",
		FishSelections: map[string]int{"Betta": 1, "Neon Tetra": 1},
	})
	if err != nil {
		t.Fatalf("evaluate conditional pairing: %v", err)
	}
	if report.TankDetails.Status != stocking.StatusOptimal {
		t.Fatalf("conditional pair should not flip status, got %s", report.TankDetails.Status)
	}
	if len(report.CompatibilityIssues) != 1 {
		t.Fatalf("expected conditional issue to surface, got %+v", report.CompatibilityIssues)
	}
	if got := report.CompatibilityIssues[0].Pair; got != [2]string{"Betta", "Neon Tetra"} {
		t.Fatalf("unexpected pair %v", got)
	}
}
