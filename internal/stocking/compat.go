package stocking

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Verdict is the raw pairwise judgement produced by an external classifier.
// Classification text is free-form collaborator data; the engine normalizes
// it into a PairClass exactly once on receipt.
type Verdict struct {
	Classification string
	Reasons        []string
}

// PairClass is the engine's closed classification of a species pair.
type PairClass int

// Pair classifications ordered from permissive to prohibitive.
const (
	PairCompatible PairClass = iota
	PairConditional
	PairIncompatible
)

// classifyVerdict maps collaborator text onto the closed pair classes.
// Anything that is neither an explicit rejection nor a conditional note is
// implicitly compatible.
func classifyVerdict(text string) PairClass {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch {
	case normalized == "not compatible", normalized == "incompatible":
		return PairIncompatible
	case strings.HasPrefix(normalized, "conditional"):
		return PairConditional
	default:
		return PairCompatible
	}
}

// PairIssue reports one aggregated species pair with the classifier's
// reasons. The pair is ordered by its dedup key so output is deterministic.
type PairIssue struct {
	Pair    [2]string `json:"pair"`
	Reasons []string  `json:"reasons"`
}

// AggregatePairs classifies every unordered pair in the flattened selection
// and buckets the verdicts. Pairs are deduplicated by sorted-lowercase key,
// so (A,B) and (B,A) - and repeats from quantity flattening - collapse into
// one entry. Self-pairs are skipped.
func (e *Engine) AggregatePairs(ctx context.Context, names []string) (incompatible, conditional []PairIssue, err error) {
	if e.pairs == nil || len(names) < 2 {
		return nil, nil, nil
	}

	// uniqueSortedNames collapses the multiset case-insensitively, so each
	// unordered pair is visited exactly once, already in dedup-key order.
	unique := uniqueSortedNames(names)
	for i := 0; i < len(unique); i++ {
		for j := i + 1; j < len(unique); j++ {
			a, b := unique[i], unique[j]
			verdict, err := e.pairs.Classify(ctx, a, b)
			if err != nil {
				return nil, nil, fmt.Errorf("classify pair %s/%s: %w", a, b, err)
			}
			issue := PairIssue{Pair: [2]string{a, b}, Reasons: verdict.Reasons}
			switch classifyVerdict(verdict.Classification) {
			case PairIncompatible:
				incompatible = append(incompatible, issue)
			case PairConditional:
				conditional = append(conditional, issue)
			}
		}
	}
	return incompatible, conditional, nil
}

// TankmateIntersection computes the companion species documented as suitable
// for every member of the selection, per recommendation tier. The
// intersection runs over case-normalized names and returns ascending sorted
// results; an empty intersection is a valid outcome, not an error.
func (e *Engine) TankmateIntersection(ctx context.Context, names []string) (full, conditional []string, err error) {
	if e.tankmates == nil || len(names) == 0 {
		return nil, nil, nil
	}

	unique := uniqueSortedNames(names)
	var fullSet, conditionalSet map[string]string
	for i, name := range unique {
		f, c, err := e.tankmates.Tankmates(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("tankmates for %s: %w", name, err)
		}
		if i == 0 {
			fullSet = nameSet(f)
			conditionalSet = nameSet(c)
			continue
		}
		fullSet = intersect(fullSet, nameSet(f))
		conditionalSet = intersect(conditionalSet, nameSet(c))
	}
	return sortedValues(fullSet), sortedValues(conditionalSet), nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// uniqueSortedNames collapses a case-insensitive multiset to its distinct
// display names, sorted by normalized form for deterministic iteration.
func uniqueSortedNames(names []string) []string {
	seen := make(map[string]string, len(names))
	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = name
		}
	}
	out := make([]string, 0, len(seen))
	for _, display := range seen {
		out = append(out, display)
	}
	sort.Slice(out, func(i, j int) bool { return normalizeName(out[i]) < normalizeName(out[j]) })
	return out
}

func nameSet(names []string) map[string]string {
	set := make(map[string]string, len(names))
	for _, name := range names {
		if key := normalizeName(name); key != "" {
			set[key] = name
		}
	}
	return set
}

func intersect(a, b map[string]string) map[string]string {
	out := make(map[string]string)
	for key, display := range a {
		if _, ok := b[key]; ok {
			out[key] = display
		}
	}
	return out
}

func sortedValues(set map[string]string) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for _, display := range set {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}
