// Package stockpluginapi is the stable surface species-pack plugins build
// against. It deliberately imports nothing from the domain packages, so a
// pack compiled against one release keeps working across internal refactors.
package stockpluginapi

// Version identifies the plugin API generation.
const Version = "v1"

// SpeciesSpec describes one species contributed by a plugin. Behavior and
// Temperament are free text; the host classifies them at ingestion.
type SpeciesSpec struct {
	CommonName       string
	ScientificName   string
	MaxSizeCm        float64
	MinTankLiters    float64 // zero means unspecified
	Bioload          float64 // zero means baseline
	Behavior         string
	Temperament      string
	PreferredFood    string
	PortionGrams     float64
	FeedingFrequency int
}

// PairVerdict is a pairwise compatibility judgement between two species.
// Classification follows the evaluation conventions: "Not Compatible" and
// "Incompatible" reject the pair, a "Conditional:" prefix flags it, anything
// else is compatible.
type PairVerdict struct {
	A              string
	B              string
	Classification string
	Reasons        []string
}

// TankmateSet lists recommended companions for one species, split into fully
// and conditionally compatible names.
type TankmateSet struct {
	Species     string
	Full        []string
	Conditional []string
}

// Registry accumulates a plugin's contributions during Register.
type Registry interface {
	RegisterSpecies(spec SpeciesSpec)
	RegisterPairVerdict(verdict PairVerdict)
	RegisterTankmates(set TankmateSet)
	RegisterRule(rule Rule) error
}

// Plugin is implemented by species packs.
type Plugin interface {
	Name() string
	Version() string
	Register(Registry) error
}
