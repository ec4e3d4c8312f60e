// Package analysis runs the block pipeline over procedures: assemble blocks
// from the edge stream, build the block graph, fingerprint blocks in
// traversal order and compare procedures.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bbsim/internal/blocks"
	"bbsim/internal/distance"
	"bbsim/internal/insn"
	"bbsim/internal/metrics"
)

// Block is one visited block.
type Block struct {
	Leader  insn.Index     `json:"leader"`
	Depth   int            `json:"depth"`
	Members []insn.Index   `json:"members"`
	Succs   []insn.Index   `json:"succs,omitempty"`
	Vector  metrics.Vector `json:"vector"`
}

// Result is the analysis of one procedure.
type Result struct {
	Name    string        `json:"name"`
	Insns   int           `json:"insns"`
	Edges   int           `json:"edges"`
	Skipped int           `json:"skipped,omitempty"` // out-of-range edge notifications
	Dropped int           `json:"dropped,omitempty"` // block edges without a leader
	Blocks  []Block       `json:"blocks"`
	Graph   *blocks.Graph `json:"-"`
}

// Points returns the block vectors in traversal order.
func (r *Result) Points() [][]float64 {
	out := make([][]float64, len(r.Blocks))
	for i, b := range r.Blocks {
		out[i] = b.Vector.Slice()
	}
	return out
}

// Options tunes the pipeline.
type Options struct {
	Workers int // concurrent block metric workers; <= 0 is unbounded
	Logger  *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Analyze assembles p into a block graph and computes a feature vector for
// every block reachable from the entry.
func Analyze(ctx context.Context, p *insn.Procedure, opts Options) (*Result, error) {
	log := opts.logger().With("proc", p.Name)

	asm := blocks.Assemble(p)
	g := asm.Graph(p.Frames)
	if n := asm.Skipped(); n > 0 {
		log.Warn("skipped out-of-range edges", "count", n)
	}
	if n := g.Dropped(); n > 0 {
		log.Warn("dropped block edges without a leader", "count", n)
	}

	vecs, err := metrics.CalculateAll(ctx, g, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("analysis: %s: %w", p.Name, err)
	}

	res := &Result{
		Name:    p.Name,
		Insns:   len(p.Insns),
		Edges:   len(p.Edges),
		Skipped: asm.Skipped(),
		Dropped: g.Dropped(),
		Graph:   g,
	}
	res.Blocks = blocks.Traverse(g, func(n blocks.Node) Block {
		v, ok := vecs[n.ID]
		if !ok {
			// Root of a graph without edges.
			v = metrics.Calculate(g.BlockInsns(n.ID))
		}
		return Block{
			Leader:  n.ID,
			Depth:   n.Depth,
			Members: g.MembersOf(n.ID),
			Succs:   g.Successors(n.ID),
			Vector:  v,
		}
	})
	log.Debug("analyzed", "insns", res.Insns, "edges", res.Edges,
		"leaders", len(g.Leaders()), "visited", len(res.Blocks))
	return res, nil
}

// Comparison is the similarity of two procedures.
type Comparison struct {
	A        *Result           `json:"a"`
	B        *Result           `json:"b"`
	Distance float64           `json:"distance"`
	Triples  []distance.Triple `json:"triples,omitempty"`
}

// Compare analyzes a and b concurrently and scores them. Triples are kept
// when withTriples is set.
func Compare(ctx context.Context, a, b *insn.Procedure, withTriples bool, opts Options) (*Comparison, error) {
	var ra, rb *Result
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		ra, err = Analyze(ctx, a, opts)
		return err
	})
	eg.Go(func() (err error) {
		rb, err = Analyze(ctx, b, opts)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	c := &Comparison{A: ra, B: rb}
	d, err := distance.Distance(ra.Points(), rb.Points())
	if err != nil {
		return nil, fmt.Errorf("analysis: compare %s and %s: %w", a.Name, b.Name, err)
	}
	c.Distance = d
	if withTriples {
		if c.Triples, err = distance.Triples(ra.Points(), rb.Points()); err != nil {
			return nil, fmt.Errorf("analysis: compare %s and %s: %w", a.Name, b.Name, err)
		}
	}
	opts.logger().Debug("compared", "a", a.Name, "b", b.Name, "distance", d)
	return c, nil
}
