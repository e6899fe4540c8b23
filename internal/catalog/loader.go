package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"aquacore/pkg/domain"
)

// SoftFloat is a float that parses leniently from YAML: numeric scalars and
// numeric strings both yield a value, anything else is recorded as missing
// with the raw text kept for diagnostics. Parsing never fails; dirty catalog
// data degrades to fallback behavior instead of aborting a pack load.
type SoftFloat struct {
	Value float64
	Valid bool
	raw   string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *SoftFloat) UnmarshalYAML(node *yaml.Node) error {
	var num float64
	if err := node.Decode(&num); err == nil {
		f.Value, f.Valid = num, true
		return nil
	}
	var s string
	if err := node.Decode(&s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value, f.Valid = v, true
		} else {
			f.raw = s
		}
		return nil
	}
	f.raw = strings.TrimSpace(node.Value)
	return nil
}

// SoftInt parses like SoftFloat but truncates to an integer.
type SoftInt struct {
	Value int
	Valid bool
	raw   string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (i *SoftInt) UnmarshalYAML(node *yaml.Node) error {
	var f SoftFloat
	if err := f.UnmarshalYAML(node); err != nil {
		return err
	}
	i.Value, i.Valid, i.raw = int(f.Value), f.Valid, f.raw
	return nil
}

// PackSpecies is one species row of a YAML pack file.
type PackSpecies struct {
	CommonName       string    `yaml:"common_name"`
	ScientificName   string    `yaml:"scientific_name"`
	MaxSizeCm        SoftFloat `yaml:"max_size_cm"`
	MinimumTankSizeL SoftFloat `yaml:"minimum_tank_size_l"`
	Bioload          SoftFloat `yaml:"bioload"`
	SocialBehavior   string    `yaml:"social_behavior"`
	Temperament      string    `yaml:"temperament"`
	PreferredFood    string    `yaml:"preferred_food"`
	PortionGrams     SoftFloat `yaml:"portion_grams"`
	FeedingFrequency SoftInt   `yaml:"feeding_frequency"`
}

// Pack is a species pack file.
type Pack struct {
	Name    string        `yaml:"name"`
	Version int           `yaml:"version"`
	Species []PackSpecies `yaml:"species"`
}

// LoadPackFile reads and parses one pack.
func LoadPackFile(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, fmt.Errorf("read pack %s: %w", path, err)
	}
	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return Pack{}, fmt.Errorf("parse pack %s: %w", path, err)
	}
	if pack.Name == "" {
		pack.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return pack, nil
}

// LoadPackDir loads every .yaml/.yml pack in a directory, sorted by file
// name so repeated loads are deterministic.
func LoadPackDir(dir string) ([]Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read pack dir %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	packs := make([]Pack, 0, len(files))
	for _, name := range files {
		pack, err := LoadPackFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	return packs, nil
}

// SpeciesRecords converts a pack's rows into catalog records. Missing or
// junk numerics become the documented fallbacks (nil minimum tank size,
// baseline bioload), and the free-text behavior descriptor is classified
// once here with the original text preserved in BehaviorDetail.
func (p Pack) SpeciesRecords() []domain.Species {
	records := make([]domain.Species, 0, len(p.Species))
	for _, row := range p.Species {
		if strings.TrimSpace(row.CommonName) == "" {
			continue
		}
		sp := domain.Species{
			CommonName:       strings.TrimSpace(row.CommonName),
			MaxSizeCm:        row.MaxSizeCm.Value,
			Bioload:          1.0,
			Behavior:         ClassifyBehavior(row.SocialBehavior),
			Temperament:      strings.TrimSpace(row.Temperament),
			PreferredFood:    strings.TrimSpace(row.PreferredFood),
			PortionGrams:     row.PortionGrams.Value,
			FeedingFrequency: row.FeedingFrequency.Value,
		}
		if sci := strings.TrimSpace(row.ScientificName); sci != "" {
			sp.ScientificName = &sci
		}
		if row.MinimumTankSizeL.Valid && row.MinimumTankSizeL.Value > 0 {
			v := row.MinimumTankSizeL.Value
			sp.MinTankLiters = &v
		}
		if row.Bioload.Valid && row.Bioload.Value > 0 {
			sp.Bioload = row.Bioload.Value
		}
		if detail := strings.TrimSpace(row.SocialBehavior); detail != "" && detail != string(sp.Behavior) {
			sp.BehaviorDetail = detail
		}
		records = append(records, sp)
	}
	return records
}

// Validate reports pack problems for catalog-check: blank or duplicate
// names and non-numeric values in numeric fields. An empty result means the
// pack is clean.
func (p Pack) Validate() []string {
	var issues []string
	seen := make(map[string]string)
	for i, row := range p.Species {
		name := strings.TrimSpace(row.CommonName)
		if name == "" {
			issues = append(issues, fmt.Sprintf("species[%d]: missing common_name", i))
			continue
		}
		key := normalize(name)
		if prior, dup := seen[key]; dup {
			issues = append(issues, fmt.Sprintf("species %q: duplicate of %q", name, prior))
		} else {
			seen[key] = name
		}
		for _, field := range []struct {
			label string
			raw   string
		}{
			{"max_size_cm", row.MaxSizeCm.raw},
			{"minimum_tank_size_l", row.MinimumTankSizeL.raw},
			{"bioload", row.Bioload.raw},
			{"portion_grams", row.PortionGrams.raw},
			{"feeding_frequency", row.FeedingFrequency.raw},
		} {
			if field.raw != "" {
				issues = append(issues, fmt.Sprintf("species %q: %s %q is not numeric", name, field.label, field.raw))
			}
		}
	}
	return issues
}
