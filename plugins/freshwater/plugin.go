// Package freshwater bundles the starter species pack: common community and
// centerpiece fish with their care parameters, a pairwise compatibility
// table, tankmate recommendations, and one advisory rule.
package freshwater

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"aquacore/pkg/stockpluginapi"
)

// Plugin implements the bundled freshwater species pack.
type Plugin struct{}

// New constructs a freshwater plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "freshwater" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires the species records, compatibility data, and the
// single-male betta advisory.
func (Plugin) Register(registry stockpluginapi.Registry) error {
	for _, spec := range speciesSpecs {
		registry.RegisterSpecies(spec)
	}
	for _, verdict := range pairVerdicts {
		registry.RegisterPairVerdict(verdict)
	}
	for _, set := range tankmateSets {
		registry.RegisterTankmates(set)
	}
	return registry.RegisterRule(bettaSingleMaleRule{})
}

var speciesSpecs = []stockpluginapi.SpeciesSpec{
	{
		CommonName:       "Neon Tetra",
		ScientificName:   "Paracheirodon innesi",
		MaxSizeCm:        4,
		MinTankLiters:    40,
		Bioload:          0.5,
		Behavior:         "schooling, keep in groups of six or more",
		Temperament:      "peaceful",
		PreferredFood:    "flakes, micro pellets",
		PortionGrams:     0.3,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Betta",
		ScientificName:   "Betta splendens",
		MaxSizeCm:        7,
		MinTankLiters:    19,
		Bioload:          1,
		Behavior:         "territorial, males fight on sight",
		Temperament:      "aggressive toward similar fish",
		PreferredFood:    "carnivore pellets, bloodworms",
		PortionGrams:     0.4,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Fancy Goldfish",
		ScientificName:   "Carassius auratus",
		MaxSizeCm:        20,
		MinTankLiters:    75,
		Bioload:          3,
		Behavior:         "social coldwater community",
		Temperament:      "peaceful",
		PreferredFood:    "goldfish flakes, vegetables",
		PortionGrams:     1.5,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Guppy",
		ScientificName:   "Poecilia reticulata",
		MaxSizeCm:        5,
		MinTankLiters:    20,
		Bioload:          0.5,
		Behavior:         "active shoaling livebearer",
		Temperament:      "peaceful",
		PreferredFood:    "omnivore flakes",
		PortionGrams:     0.3,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Bronze Corydoras",
		ScientificName:   "Corydoras aeneus",
		MaxSizeCm:        7,
		MinTankLiters:    60,
		Bioload:          0.8,
		Behavior:         "peaceful bottom-dwelling shoaler",
		Temperament:      "peaceful",
		PreferredFood:    "sinking pellets, algae wafers",
		PortionGrams:     0.5,
		FeedingFrequency: 1,
	},
	{
		CommonName:       "Angelfish",
		ScientificName:   "Pterophyllum scalare",
		MaxSizeCm:        15,
		MinTankLiters:    110,
		Bioload:          2,
		Behavior:         "community cichlid, pairs off when breeding",
		Temperament:      "semi-aggressive",
		PreferredFood:    "flakes, bloodworms, brine shrimp",
		PortionGrams:     0.8,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Oscar",
		ScientificName:   "Astronotus ocellatus",
		MaxSizeCm:        35,
		MinTankLiters:    210,
		Bioload:          5,
		Behavior:         "aggressive predator, rearranges decor",
		Temperament:      "aggressive",
		PreferredFood:    "cichlid pellets, krill",
		PortionGrams:     3,
		FeedingFrequency: 1,
	},
	{
		CommonName:       "Tiger Barb",
		ScientificName:   "Puntigrus tetrazona",
		MaxSizeCm:        7,
		MinTankLiters:    75,
		Bioload:          1,
		Behavior:         "schooling fin nipper, calmer in groups of eight",
		Temperament:      "semi-aggressive",
		PreferredFood:    "omnivore flakes, daphnia",
		PortionGrams:     0.4,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "Zebra Danio",
		ScientificName:   "Danio rerio",
		MaxSizeCm:        5,
		MinTankLiters:    40,
		Bioload:          0.5,
		Behavior:         "fast-moving surface shoaler",
		Temperament:      "peaceful",
		PreferredFood:    "flakes, daphnia",
		PortionGrams:     0.3,
		FeedingFrequency: 2,
	},
	{
		CommonName:       "White Cloud Mountain Minnow",
		ScientificName:   "Tanichthys albonubes",
		MaxSizeCm:        4,
		MinTankLiters:    40,
		Bioload:          0.4,
		Behavior:         "hardy coldwater shoaler",
		Temperament:      "peaceful",
		PreferredFood:    "flakes, micro pellets",
		PortionGrams:     0.2,
		FeedingFrequency: 2,
	},
}

var pairVerdicts = []stockpluginapi.PairVerdict{
	{
		A: "Betta", B: "Guppy",
		Classification: "Not Compatible",
		Reasons:        []string{"bettas attack colorful long-finned fish"},
	},
	{
		A: "Betta", B: "Tiger Barb",
		Classification: "Not Compatible",
		Reasons:        []string{"tiger barbs nip betta fins"},
	},
	{
		A: "Betta", B: "Neon Tetra",
		Classification: "Conditional: needs 60 L or more with dense planting",
		Reasons:        []string{"works in larger planted tanks with sight breaks"},
	},
	{
		A: "Oscar", B: "Neon Tetra",
		Classification: "Not Compatible",
		Reasons:        []string{"oscars eat any fish that fits their mouth"},
	},
	{
		A: "Oscar", B: "Guppy",
		Classification: "Not Compatible",
		Reasons:        []string{"oscars eat any fish that fits their mouth"},
	},
	{
		A: "Oscar", B: "Bronze Corydoras",
		Classification: "Not Compatible",
		Reasons:        []string{"oscars harass and eventually injure bottom dwellers"},
	},
	{
		A: "Fancy Goldfish", B: "Neon Tetra",
		Classification: "Not Compatible",
		Reasons:        []string{"coldwater and tropical temperature ranges do not overlap"},
	},
	{
		A: "Fancy Goldfish", B: "Betta",
		Classification: "Not Compatible",
		Reasons:        []string{"temperature mismatch and fin nipping both ways"},
	},
	{
		A: "Angelfish", B: "Neon Tetra",
		Classification: "Conditional: only with adult tetras and a tall tank",
		Reasons:        []string{"adult angelfish eat small tetras"},
	},
	{
		A: "Angelfish", B: "Tiger Barb",
		Classification: "Not Compatible",
		Reasons:        []string{"barbs shred trailing angelfish fins"},
	},
	{
		A: "Guppy", B: "Tiger Barb",
		Classification: "Conditional: barb school of eight or more spreads the nipping",
		Reasons:        []string{"barbs target slow long-finned tankmates"},
	},
}

var tankmateSets = []stockpluginapi.TankmateSet{
	{
		Species:     "Neon Tetra",
		Full:        []string{"Bronze Corydoras", "Guppy", "Zebra Danio"},
		Conditional: []string{"Angelfish", "Betta"},
	},
	{
		Species:     "Betta",
		Full:        []string{"Bronze Corydoras"},
		Conditional: []string{"Neon Tetra", "Zebra Danio"},
	},
	{
		Species:     "Fancy Goldfish",
		Full:        []string{"White Cloud Mountain Minnow"},
		Conditional: []string{},
	},
	{
		Species:     "Bronze Corydoras",
		Full:        []string{"Neon Tetra", "Guppy", "Zebra Danio", "Angelfish"},
		Conditional: []string{"Tiger Barb"},
	},
	{
		Species:     "Guppy",
		Full:        []string{"Neon Tetra", "Bronze Corydoras", "White Cloud Mountain Minnow"},
		Conditional: []string{"Zebra Danio"},
	},
}

// bettaSingleMaleRule warns when a stored plan keeps more than one betta in
// the same tank. Sororities exist but are an expert setup, so the pack flags
// the quantity instead of blocking it.
type bettaSingleMaleRule struct{}

func (bettaSingleMaleRule) Name() string { return "betta_single_male" }

func (bettaSingleMaleRule) Evaluate(_ context.Context, view stockpluginapi.RuleView) (stockpluginapi.Result, error) {
	var res stockpluginapi.Result
	for _, plan := range view.Plans() {
		names := make([]string, 0, len(plan.Selection))
		for name := range plan.Selection {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			quantity := plan.Selection[name]
			if quantity < 2 || !strings.Contains(strings.ToLower(name), "betta") {
				continue
			}
			res.Violations = append(res.Violations, stockpluginapi.Violation{
				Rule:     "betta_single_male",
				Severity: stockpluginapi.SeverityWarn,
				Message:  fmt.Sprintf("plan %s keeps %d bettas together; males fight and should be housed singly", plan.Name, quantity),
				Entity:   stockpluginapi.EntityStockingPlan,
				EntityID: plan.ID,
			})
		}
	}
	return res, nil
}
