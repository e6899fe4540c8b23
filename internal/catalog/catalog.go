// Package catalog maintains the in-memory species catalog backing the
// stocking engine: case-insensitive lookup with bounded fuzzy matching,
// YAML species-pack ingestion with soft numeric parsing, live pack reload,
// and concurrent batch resolution of selections.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"aquacore/pkg/domain"
)

// MatchKind describes how a lookup term matched a catalog entry.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchAlias
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchAlias:
		return "alias"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Match is the outcome of a successful catalog resolution.
type Match struct {
	Species  domain.Species
	Kind     MatchKind
	Distance int
}

// Catalog is a read-mostly species registry safe for concurrent use.
// Entries are keyed by normalized common name; scientific names register as
// aliases. ReplaceAll swaps the whole content atomically, which is how pack
// reloads publish a new generation without readers observing a partial state.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]domain.Species
	aliases map[string]string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		entries: make(map[string]domain.Species),
		aliases: make(map[string]string),
	}
}

// Put inserts or replaces one species, registering its scientific name as an
// alias when present. Blank common names are ignored.
func (c *Catalog) Put(sp domain.Species) {
	key := normalize(sp.CommonName)
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = sp
	if sp.ScientificName != nil {
		if alias := normalize(*sp.ScientificName); alias != "" && alias != key {
			c.aliases[alias] = key
		}
	}
}

// ReplaceAll atomically swaps the catalog content for the given records.
func (c *Catalog) ReplaceAll(species []domain.Species) {
	entries := make(map[string]domain.Species, len(species))
	aliases := make(map[string]string)
	for _, sp := range species {
		key := normalize(sp.CommonName)
		if key == "" {
			continue
		}
		entries[key] = sp
		if sp.ScientificName != nil {
			if alias := normalize(*sp.ScientificName); alias != "" && alias != key {
				aliases[alias] = key
			}
		}
	}
	c.mu.Lock()
	c.entries = entries
	c.aliases = aliases
	c.mu.Unlock()
}

// Len reports the number of distinct species.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Names returns every catalog common name in display form, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for _, sp := range c.entries {
		names = append(names, sp.CommonName)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a species by name. The error is always nil; the catalog is
// local and infallible, and absence is an ordinary result.
func (c *Catalog) Lookup(_ context.Context, name string) (domain.Species, bool, error) {
	match, ok := c.Resolve(name)
	return match.Species, ok, nil
}

// Resolve looks a term up with full match diagnostics: exact on common name,
// then alias (scientific name), then the nearest fuzzy candidate within the
// edit budget.
func (c *Catalog) Resolve(name string) (Match, bool) {
	term := normalize(name)
	if term == "" {
		return Match{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if sp, ok := c.entries[term]; ok {
		return Match{Species: sp, Kind: MatchExact}, true
	}
	if key, ok := c.aliases[term]; ok {
		return Match{Species: c.entries[key], Kind: MatchAlias}, true
	}
	if key, dist, ok := c.nearest(term); ok {
		return Match{Species: c.entries[key], Kind: MatchFuzzy, Distance: dist}, true
	}
	return Match{}, false
}

// nearest scans entry and alias keys for the closest Levenshtein match
// within the per-length edit budget. Terms shorter than three characters
// never fuzzy-match; ties break on the lexicographically smallest key so
// resolution is deterministic.
func (c *Catalog) nearest(term string) (string, int, bool) {
	if len(term) < 3 {
		return "", 0, false
	}
	bestKey, bestDist, found := "", 0, false
	consider := func(candidate, target string) {
		dist := levenshtein.ComputeDistance(term, candidate)
		if dist > editBudget(len(candidate)) {
			return
		}
		if !found || dist < bestDist || (dist == bestDist && target < bestKey) {
			bestKey, bestDist, found = target, dist, true
		}
	}
	for key := range c.entries {
		consider(key, key)
	}
	for alias, key := range c.aliases {
		consider(alias, key)
	}
	return bestKey, bestDist, found
}

// editBudget is the maximum Levenshtein distance accepted for a candidate of
// the given length.
func editBudget(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
