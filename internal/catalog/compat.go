package catalog

import (
	"context"
	"sort"
	"sync"

	"aquacore/internal/stocking"
)

// PairTable is a concurrency-safe pairwise compatibility table implementing
// the engine's PairClassifier. Pairs are keyed order-independently; a pair
// with no entry is implicitly compatible.
type PairTable struct {
	mu       sync.RWMutex
	verdicts map[string]stocking.Verdict
}

// NewPairTable returns an empty table.
func NewPairTable() *PairTable {
	return &PairTable{verdicts: make(map[string]stocking.Verdict)}
}

// Put records the verdict for an unordered species pair.
func (p *PairTable) Put(a, b string, verdict stocking.Verdict) {
	key := pairKey(a, b)
	if key == "" {
		return
	}
	p.mu.Lock()
	p.verdicts[key] = verdict
	p.mu.Unlock()
}

// Classify returns the stored verdict for the pair, or the zero verdict
// (implicitly compatible) when none is recorded.
func (p *PairTable) Classify(_ context.Context, a, b string) (stocking.Verdict, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.verdicts[pairKey(a, b)], nil
}

// Len reports the number of recorded pairs.
func (p *PairTable) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.verdicts)
}

func pairKey(a, b string) string {
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" || na == nb {
		return ""
	}
	if nb < na {
		na, nb = nb, na
	}
	return na + "|" + nb
}

// TankmateTable stores per-species companion recommendation sets and
// implements the engine's TankmateSource.
type TankmateTable struct {
	mu          sync.RWMutex
	full        map[string][]string
	conditional map[string][]string
}

// NewTankmateTable returns an empty table.
func NewTankmateTable() *TankmateTable {
	return &TankmateTable{
		full:        make(map[string][]string),
		conditional: make(map[string][]string),
	}
}

// Put records the companion sets for a species, replacing prior entries.
func (t *TankmateTable) Put(name string, full, conditional []string) {
	key := normalize(name)
	if key == "" {
		return
	}
	t.mu.Lock()
	t.full[key] = dedupeSorted(full)
	t.conditional[key] = dedupeSorted(conditional)
	t.mu.Unlock()
}

// Tankmates returns the recorded companion sets; both are nil for species
// with no entry, which the aggregator treats as an empty recommendation.
func (t *TankmateTable) Tankmates(_ context.Context, name string) ([]string, []string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key := normalize(name)
	return append([]string(nil), t.full[key]...), append([]string(nil), t.conditional[key]...), nil
}

func dedupeSorted(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]string, len(names))
	for _, name := range names {
		if key := normalize(name); key != "" {
			if _, ok := seen[key]; !ok {
				seen[key] = name
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}
