package catalog

import (
	"context"
	"testing"

	"aquacore/pkg/domain"
)

func TestResolveAllPreservesInputOrder(t *testing.T) {
	c := New()
	c.Put(guppy())
	c.Put(domain.Species{CommonName: "Betta", MaxSizeCm: 7, Bioload: 1, Behavior: domain.BehaviorSolitary})

	names := []string{"Betta", "Axolotl", "guppy", "guppi"}
	results, err := c.ResolveAll(context.Background(), names, 2)
	if err != nil {
		t.Fatalf("resolve all: %v", err)
	}
	if len(results) != len(names) {
		t.Fatalf("results = %+v", results)
	}
	for i, name := range names {
		if results[i].Requested != name {
			t.Fatalf("result %d requested %q, want %q", i, results[i].Requested, name)
		}
	}
	if !results[0].Found || results[1].Found || !results[2].Found || !results[3].Found {
		t.Fatalf("found flags = %+v", results)
	}
	if results[3].Match.Kind != MatchFuzzy {
		t.Fatalf("guppi match = %+v", results[3].Match)
	}
}

func TestResolveAllEmptyInput(t *testing.T) {
	c := New()
	results, err := c.ResolveAll(context.Background(), nil, 0)
	if err != nil || results != nil {
		t.Fatalf("empty input: %v, %v", results, err)
	}
}

func TestResolveAllHonorsCancellation(t *testing.T) {
	c := New()
	c.Put(guppy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ResolveAll(ctx, []string{"guppy", "betta", "oscar"}, 1); err == nil {
		t.Fatal("expected cancellation error")
	}
}
