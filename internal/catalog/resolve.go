package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// defaultResolveLimit bounds concurrent lookups during batch resolution.
const defaultResolveLimit = 8

// Resolution pairs one requested name with its catalog outcome. Found false
// means the caller should substitute fallback defaults.
type Resolution struct {
	Requested string
	Match     Match
	Found     bool
}

// ResolveAll resolves a batch of names concurrently. Results come back in
// input order regardless of completion order, so output is deterministic;
// the only possible error is context cancellation.
func (c *Catalog) ResolveAll(ctx context.Context, names []string, limit int) ([]Resolution, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultResolveLimit
	}

	results := make([]Resolution, len(names))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			match, ok := c.Resolve(name)
			results[i] = Resolution{Requested: name, Match: match, Found: ok}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
