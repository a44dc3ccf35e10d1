// internal/pipeline/chains.go
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"modscan/internal/chain"
	"modscan/internal/hit"
)

// Region is one independent chain-selection problem.
type Region struct {
	Name        string
	Collections []hit.Collection
}

// SelectChains runs chain.Select for every region with at most workers
// selections in flight. Results are index-aligned with regions. The first
// error cancels the remaining work.
func SelectChains(ctx context.Context, regions []Region, cfg chain.Config, workers int) ([]chain.Chain, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]chain.Chain, len(regions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range regions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ch, err := chain.Select(r.Collections, cfg)
			if err != nil {
				return fmt.Errorf("region %s: %w", r.Name, err)
			}
			out[i] = ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
