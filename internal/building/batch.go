package building

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// GenerateBatch generates every spec with at most limit running at once (GOMAXPROCS
// when limit ≤ 0). Results keep the order of specs. The first failure cancels the
// rest and is returned.
func (g *Generator) GenerateBatch(ctx context.Context, specs []Spec, limit int) ([]*Building, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]*Building, len(specs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, spec := range specs {
		eg.Go(func() error {
			b, err := g.Generate(ctx, spec)
			if err != nil {
				return fmt.Errorf("building %d (%s): %w", i, spec.Name, err)
			}
			out[i] = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
