package metrics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bbsim/internal/blocks"
	"bbsim/internal/insn"
)

// Projection returns a traversal projection yielding the feature vector of
// each visited block as a point.
func Projection(g *blocks.Graph) func(blocks.Node) []float64 {
	return func(n blocks.Node) []float64 {
		return Calculate(g.BlockInsns(n.ID)).Slice()
	}
}

// Points returns the feature vectors of g's blocks in breadth-first order.
func Points(g *blocks.Graph) [][]float64 {
	return blocks.Traverse(g, Projection(g))
}

// CalculateAll computes the vector of every leader in g, at most limit at a
// time (limit <= 0 means unbounded).
func CalculateAll(ctx context.Context, g *blocks.Graph, limit int) (map[insn.Index]Vector, error) {
	leaders := g.Leaders()
	vecs := make([]Vector, len(leaders))

	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, l := range leaders {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vecs[i] = Calculate(g.BlockInsns(l))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[insn.Index]Vector, len(leaders))
	for i, l := range leaders {
		out[l] = vecs[i]
	}
	return out, nil
}
