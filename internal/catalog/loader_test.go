package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aquacore/pkg/domain"
)

const samplePack = `name: starter
version: 1
species:
  - common_name: Neon Tetra
    scientific_name: Paracheirodon innesi
    max_size_cm: 4
    minimum_tank_size_l: "60"
    bioload: 1.0
    social_behavior: "Schooling, peaceful"
    temperament: peaceful
    preferred_food: tropical flakes
    portion_grams: 0.2
    feeding_frequency: 2
  - common_name: Betta
    max_size_cm: "seven-ish"
    minimum_tank_size_l: 10
    social_behavior: solitary
    temperament: aggressive
    preferred_food: carnivore
    portion_grams: 0.3
    feeding_frequency: "2"
`

func writePack(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	return path
}

func TestLoadPackFile(t *testing.T) {
	path := writePack(t, t.TempDir(), "starter.yaml", samplePack)
	pack, err := LoadPackFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pack.Name != "starter" || pack.Version != 1 || len(pack.Species) != 2 {
		t.Fatalf("pack = %+v", pack)
	}

	records := pack.SpeciesRecords()
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}

	tetra := records[0]
	if tetra.CommonName != "Neon Tetra" || tetra.Behavior != domain.BehaviorSchooling {
		t.Fatalf("tetra = %+v", tetra)
	}
	if tetra.ScientificName == nil || *tetra.ScientificName != "Paracheirodon innesi" {
		t.Fatalf("scientific name = %v", tetra.ScientificName)
	}
	// The quoted "60" parses as a numeric string.
	if tetra.MinTankLiters == nil || *tetra.MinTankLiters != 60 {
		t.Fatalf("min tank = %v", tetra.MinTankLiters)
	}
	if tetra.BehaviorDetail != "Schooling, peaceful" {
		t.Fatalf("behavior detail = %q", tetra.BehaviorDetail)
	}

	betta := records[1]
	if betta.Behavior != domain.BehaviorSolitary {
		t.Fatalf("betta behavior = %q", betta.Behavior)
	}
	// "seven-ish" is junk: max size degrades to zero (missing), not an error.
	if betta.MaxSizeCm != 0 {
		t.Fatalf("betta max size = %v", betta.MaxSizeCm)
	}
	if betta.FeedingFrequency != 2 {
		t.Fatalf("betta feeding frequency = %d", betta.FeedingFrequency)
	}
	// Missing bioload takes the baseline.
	if betta.Bioload != 1.0 {
		t.Fatalf("betta bioload = %v", betta.Bioload)
	}
	// A canonical behavior string is not duplicated into the detail field.
	if betta.BehaviorDetail != "" {
		t.Fatalf("betta behavior detail = %q", betta.BehaviorDetail)
	}
}

func TestLoadPackDirOrderAndFiltering(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "b-extras.yaml", "name: extras\nspecies:\n  - common_name: Oscar\n")
	writePack(t, dir, "a-starter.yml", "name: starter\nspecies:\n  - common_name: Guppy\n")
	writePack(t, dir, "notes.txt", "not a pack")

	packs, err := LoadPackDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(packs) != 2 {
		t.Fatalf("packs = %+v", packs)
	}
	if packs[0].Name != "starter" || packs[1].Name != "extras" {
		t.Fatalf("order = %s, %s", packs[0].Name, packs[1].Name)
	}
}

func TestLoadPackFileDefaultsNameFromFile(t *testing.T) {
	path := writePack(t, t.TempDir(), "community.yaml", "species:\n  - common_name: Platy\n")
	pack, err := LoadPackFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if pack.Name != "community" {
		t.Fatalf("name = %q", pack.Name)
	}
}

func TestPackValidate(t *testing.T) {
	pack := Pack{Species: []PackSpecies{
		{CommonName: "Guppy"},
		{CommonName: "guppy "},
		{CommonName: ""},
		{CommonName: "Betta", MaxSizeCm: SoftFloat{raw: "seven-ish"}},
	}}
	issues := pack.Validate()
	if len(issues) != 3 {
		t.Fatalf("issues = %v", issues)
	}
	assertIssue := func(substr string) {
		t.Helper()
		for _, issue := range issues {
			if strings.Contains(issue, substr) {
				return
			}
		}
		t.Fatalf("no issue mentioning %q in %v", substr, issues)
	}
	assertIssue("duplicate")
	assertIssue("missing common_name")
	assertIssue(`"seven-ish" is not numeric`)
}

func TestPackValidateCleanPack(t *testing.T) {
	path := writePack(t, t.TempDir(), "clean.yaml", samplePack)
	pack, err := LoadPackFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// The sample carries one junk numeric on purpose.
	issues := pack.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "seven-ish") {
		t.Fatalf("issues = %v", issues)
	}
}

func TestLoadPackFileErrors(t *testing.T) {
	if _, err := LoadPackFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := writePack(t, t.TempDir(), "broken.yaml", "species: [unterminated")
	if _, err := LoadPackFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}
