package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"aquacore/internal/catalog"
	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
	"aquacore/pkg/stockpluginapi"
)

// pluginCatalog holds the catalog structures plugin contributions flow into:
// species records for name resolution, the pairwise verdict table, and the
// tankmate recommendation table.
type pluginCatalog struct {
	species   *catalog.Catalog
	pairs     *catalog.PairTable
	tankmates *catalog.TankmateTable
}

func newPluginCatalog() pluginCatalog {
	return pluginCatalog{
		species:   catalog.New(),
		pairs:     catalog.NewPairTable(),
		tankmates: catalog.NewTankmateTable(),
	}
}

// WithCatalog shares an externally managed species catalog (for example one
// kept fresh by a pack watcher) with the evaluation path. Plugin species land
// in the shared catalog too.
func WithCatalog(c *catalog.Catalog) ServiceOption {
	return func(o *serviceOptions) {
		if c != nil {
			o.catalog = c
		}
	}
}

var _ stockpluginapi.Registry = (*PluginRegistry)(nil)

// PluginRegistry accumulates a plugin's contributions before installation.
// It implements stockpluginapi.Registry.
type PluginRegistry struct {
	species   []domain.Species
	verdicts  []stockpluginapi.PairVerdict
	tankmates []stockpluginapi.TankmateSet
	rules     []domain.Rule
	ruleNames map[string]bool
}

// NewPluginRegistry returns an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{ruleNames: make(map[string]bool)}
}

// RegisterSpecies ingests a species spec, classifying its free-text behavior
// descriptor the same way pack loading does.
func (r *PluginRegistry) RegisterSpecies(spec stockpluginapi.SpeciesSpec) {
	if strings.TrimSpace(spec.CommonName) == "" {
		return
	}
	r.species = append(r.species, speciesFromSpec(spec))
}

// RegisterPairVerdict records a pairwise compatibility judgement.
func (r *PluginRegistry) RegisterPairVerdict(verdict stockpluginapi.PairVerdict) {
	if strings.TrimSpace(verdict.A) == "" || strings.TrimSpace(verdict.B) == "" {
		return
	}
	r.verdicts = append(r.verdicts, verdict)
}

// RegisterTankmates records a companion recommendation set.
func (r *PluginRegistry) RegisterTankmates(set stockpluginapi.TankmateSet) {
	if strings.TrimSpace(set.Species) == "" {
		return
	}
	r.tankmates = append(r.tankmates, set)
}

// RegisterRule adapts and records an advisory rule. Nil rules, unnamed rules,
// and duplicate names are rejected.
func (r *PluginRegistry) RegisterRule(rule stockpluginapi.Rule) error {
	if rule == nil {
		return errors.New("rule is nil")
	}
	name := strings.TrimSpace(rule.Name())
	if name == "" {
		return errors.New("rule name must not be empty")
	}
	if r.ruleNames[name] {
		return fmt.Errorf("rule %q already registered", name)
	}
	r.ruleNames[name] = true
	r.rules = append(r.rules, adaptPluginRule(rule))
	return nil
}

// Species returns the registered species records.
func (r *PluginRegistry) Species() []domain.Species {
	out := make([]domain.Species, len(r.species))
	copy(out, r.species)
	return out
}

// Rules returns the registered rules, already adapted to the domain contract.
func (r *PluginRegistry) Rules() []domain.Rule {
	out := make([]domain.Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

func (r *PluginRegistry) speciesNames() []string {
	names := make([]string, 0, len(r.species))
	for _, sp := range r.species {
		names = append(names, sp.CommonName)
	}
	sort.Strings(names)
	return names
}

func (r *PluginRegistry) sortedRuleNames() []string {
	names := make([]string, 0, len(r.ruleNames))
	for name := range r.ruleNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// speciesFromSpec converts a facade spec into a domain record, mirroring pack
// ingestion: behavior classified once, original descriptor preserved, junk
// numerics replaced by the documented fallbacks.
func speciesFromSpec(spec stockpluginapi.SpeciesSpec) domain.Species {
	sp := domain.Species{
		CommonName:       strings.TrimSpace(spec.CommonName),
		MaxSizeCm:        spec.MaxSizeCm,
		Bioload:          1.0,
		Behavior:         catalog.ClassifyBehavior(spec.Behavior),
		Temperament:      strings.TrimSpace(spec.Temperament),
		PreferredFood:    strings.TrimSpace(spec.PreferredFood),
		PortionGrams:     spec.PortionGrams,
		FeedingFrequency: spec.FeedingFrequency,
	}
	if sci := strings.TrimSpace(spec.ScientificName); sci != "" {
		sp.ScientificName = &sci
	}
	if spec.MinTankLiters > 0 {
		v := spec.MinTankLiters
		sp.MinTankLiters = &v
	}
	if spec.Bioload > 0 {
		sp.Bioload = spec.Bioload
	}
	if detail := strings.TrimSpace(spec.Behavior); detail != "" && detail != string(sp.Behavior) {
		sp.BehaviorDetail = detail
	}
	return sp
}

// PluginMetadata summarizes an installed plugin.
type PluginMetadata struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Species []string `json:"species,omitempty"`
	Rules   []string `json:"rules,omitempty"`
}

// InstallPlugin runs the plugin's Register hook and merges its contributions:
// species into the catalog, verdicts and tankmate sets into the compatibility
// tables, advisory rules into the store's rules engine.
func (s *Service) InstallPlugin(plugin stockpluginapi.Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, errors.New("plugin is nil")
	}
	name := strings.TrimSpace(plugin.Name())
	if name == "" {
		return PluginMetadata{}, errors.New("plugin name must not be empty")
	}
	if _, exists := s.plugins[name]; exists {
		return PluginMetadata{}, fmt.Errorf("plugin %q already installed", name)
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, fmt.Errorf("register plugin %q: %w", name, err)
	}

	for _, sp := range registry.species {
		s.catalog.species.Put(sp)
	}
	for _, verdict := range registry.verdicts {
		s.catalog.pairs.Put(verdict.A, verdict.B, stocking.Verdict{
			Classification: verdict.Classification,
			Reasons:        verdict.Reasons,
		})
	}
	for _, set := range registry.tankmates {
		s.catalog.tankmates.Put(set.Species, set.Full, set.Conditional)
	}
	if engine := extractRulesEngine(s.store); engine != nil {
		for _, rule := range registry.rules {
			engine.Register(rule)
		}
	}

	meta := PluginMetadata{
		Name:    name,
		Version: plugin.Version(),
		Species: registry.speciesNames(),
		Rules:   registry.sortedRuleNames(),
	}
	s.plugins[name] = meta
	s.logger.Info("plugin installed",
		"plugin", name,
		"version", meta.Version,
		"species", len(meta.Species),
		"rules", len(meta.Rules),
	)
	return meta, nil
}

// RegisteredPlugins lists installed plugin metadata ordered by name.
func (s *Service) RegisteredPlugins() []PluginMetadata {
	out := make([]PluginMetadata, 0, len(s.plugins))
	for _, meta := range s.plugins {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
