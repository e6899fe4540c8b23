// Command registry-check audits the species packs compiled into the server
// binary. Packs are self-contained: every pair verdict and tankmate
// recommendation must reference a species the same pack registers, common
// names must be unique within the pack, and numeric care parameters must be
// sane. Run it after editing pack data.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"aquacore/pkg/stockpluginapi"
	"aquacore/plugins/freshwater"
)

var exitFunc = os.Exit

// bundledPacks lists every pack compiled into the binary. New packs must be
// added here to be audited.
func bundledPacks() []stockpluginapi.Plugin {
	return []stockpluginapi.Plugin{freshwater.New()}
}

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("registry-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	problems := 0
	for _, pack := range bundledPacks() {
		reg, err := collectPack(pack)
		if err != nil {
			if _, writeErr := fmt.Fprintf(stderr, "%s: register: %v\n", pack.Name(), err); writeErr != nil {
				return 1
			}
			return 1
		}
		issues := reg.audit()
		if len(issues) == 0 {
			if _, err := fmt.Fprintf(stdout, "ok: %s %s (%d species, %d pair verdicts, %d tankmate sets)\n",
				pack.Name(), pack.Version(), len(reg.species), len(reg.verdicts), len(reg.tankmates)); err != nil {
				return 1
			}
			continue
		}
		problems += len(issues)
		for _, issue := range issues {
			if _, err := fmt.Fprintf(stdout, "%s: %s\n", pack.Name(), issue); err != nil {
				return 1
			}
		}
	}

	if problems > 0 {
		if _, err := fmt.Fprintf(stderr, "species registry: %d problems\n", problems); err != nil {
			return 1
		}
		return 1
	}
	return 0
}

// collectingRegistry accumulates a pack's contributions for offline auditing
// instead of installing them into a service.
type collectingRegistry struct {
	species   []stockpluginapi.SpeciesSpec
	verdicts  []stockpluginapi.PairVerdict
	tankmates []stockpluginapi.TankmateSet
	rules     int
}

func collectPack(pack stockpluginapi.Plugin) (*collectingRegistry, error) {
	reg := &collectingRegistry{}
	if err := pack.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *collectingRegistry) RegisterSpecies(spec stockpluginapi.SpeciesSpec) {
	r.species = append(r.species, spec)
}

func (r *collectingRegistry) RegisterPairVerdict(verdict stockpluginapi.PairVerdict) {
	r.verdicts = append(r.verdicts, verdict)
}

func (r *collectingRegistry) RegisterTankmates(set stockpluginapi.TankmateSet) {
	r.tankmates = append(r.tankmates, set)
}

func (r *collectingRegistry) RegisterRule(stockpluginapi.Rule) error {
	r.rules++
	return nil
}

// audit reports the pack's consistency problems in registration order.
func (r *collectingRegistry) audit() []string {
	var issues []string
	known := make(map[string]string, len(r.species))

	for i, spec := range r.species {
		name := strings.TrimSpace(spec.CommonName)
		if name == "" {
			issues = append(issues, fmt.Sprintf("species[%d]: missing common_name", i))
			continue
		}
		if prior, ok := known[nameKey(name)]; ok {
			issues = append(issues, fmt.Sprintf("species %q: duplicate of %q", name, prior))
			continue
		}
		known[nameKey(name)] = name
		if spec.MaxSizeCm <= 0 {
			issues = append(issues, fmt.Sprintf("species %q: max_size_cm %g is not positive", name, spec.MaxSizeCm))
		}
		if spec.MinTankLiters < 0 {
			issues = append(issues, fmt.Sprintf("species %q: minimum_tank_size_l %g is negative", name, spec.MinTankLiters))
		}
		if spec.Bioload < 0 {
			issues = append(issues, fmt.Sprintf("species %q: bioload %g is negative", name, spec.Bioload))
		}
		if spec.PortionGrams < 0 {
			issues = append(issues, fmt.Sprintf("species %q: portion_grams %g is negative", name, spec.PortionGrams))
		}
		if spec.FeedingFrequency < 0 {
			issues = append(issues, fmt.Sprintf("species %q: feeding_frequency %d is negative", name, spec.FeedingFrequency))
		}
	}

	for _, v := range r.verdicts {
		if strings.TrimSpace(v.Classification) == "" {
			issues = append(issues, fmt.Sprintf("pair %s / %s: missing classification", v.A, v.B))
		}
		if nameKey(v.A) == nameKey(v.B) {
			issues = append(issues, fmt.Sprintf("pair %s / %s: species paired with itself", v.A, v.B))
		}
		for _, name := range []string{v.A, v.B} {
			if _, ok := known[nameKey(name)]; !ok {
				issues = append(issues, fmt.Sprintf("pair %s / %s: unknown species %q", v.A, v.B, name))
			}
		}
	}

	for _, set := range r.tankmates {
		if _, ok := known[nameKey(set.Species)]; !ok {
			issues = append(issues, fmt.Sprintf("tankmates for %q: unknown species", set.Species))
		}
		for _, companion := range set.Full {
			if _, ok := known[nameKey(companion)]; !ok {
				issues = append(issues, fmt.Sprintf("tankmates for %q: unknown companion %q", set.Species, companion))
			}
		}
		for _, companion := range set.Conditional {
			if _, ok := known[nameKey(companion)]; !ok {
				issues = append(issues, fmt.Sprintf("tankmates for %q: unknown conditional companion %q", set.Species, companion))
			}
		}
	}

	return issues
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
