package blocks

import (
	"maps"
	"slices"

	"bbsim/internal/insn"
)

// Graph is a directed graph over block leaders. Self-loops are allowed and
// parallel edges collapse. A Graph is read-only after NewGraph returns and
// may be traversed concurrently.
type Graph struct {
	succs   map[insn.Index]map[insn.Index]struct{}
	members map[insn.Index][]insn.Index // leader -> non-leader members
	insns   []insn.Insn
	frames  []any
	dropped int
}

// NewGraph indexes block edges by leader. Edges with an empty endpoint have
// no leader and are dropped (see Dropped).
func NewGraph(edges []Edge, insns []insn.Insn, frames []any) *Graph {
	g := &Graph{
		succs:   make(map[insn.Index]map[insn.Index]struct{}),
		members: make(map[insn.Index][]insn.Index),
		insns:   insns,
		frames:  frames,
	}
	for _, e := range edges {
		if len(e.From) == 0 || len(e.To) == 0 {
			g.dropped++
			continue
		}
		from, to := e.From[0], e.To[0]
		g.members[from] = slices.Clone(e.From[1:])
		g.members[to] = slices.Clone(e.To[1:])
		g.putEdge(from, to)
	}
	return g
}

func (g *Graph) addNode(n insn.Index) {
	if _, ok := g.succs[n]; !ok {
		g.succs[n] = make(map[insn.Index]struct{})
	}
}

func (g *Graph) putEdge(from, to insn.Index) {
	g.addNode(from)
	g.addNode(to)
	g.succs[from][to] = struct{}{}
}

// Dropped returns the number of edges discarded for lacking a leader.
func (g *Graph) Dropped() int { return g.dropped }

// Insns returns the instruction sequence the graph was built over.
func (g *Graph) Insns() []insn.Insn { return g.insns }

// Frames returns the opaque per-instruction frames passed to NewGraph.
func (g *Graph) Frames() []any { return g.frames }

// HasNode reports whether leader is a node of the graph.
func (g *Graph) HasNode(leader insn.Index) bool {
	_, ok := g.succs[leader]
	return ok
}

// Leaders returns every node in ascending order.
func (g *Graph) Leaders() []insn.Index {
	return slices.Sorted(maps.Keys(g.succs))
}

// Successors returns the successors of leader in ascending order.
func (g *Graph) Successors(leader insn.Index) []insn.Index {
	return slices.Sorted(maps.Keys(g.succs[leader]))
}

// EdgePairs enumerates every (from, to) leader pair, ordered by source then
// target.
func (g *Graph) EdgePairs() [][2]insn.Index {
	var out [][2]insn.Index
	for _, from := range g.Leaders() {
		for _, to := range g.Successors(from) {
			out = append(out, [2]insn.Index{from, to})
		}
	}
	return out
}

// MembersOf returns the leader followed by the rest of its block. An
// unknown leader yields a single-element slice.
func (g *Graph) MembersOf(leader insn.Index) []insn.Index {
	rest := g.members[leader]
	out := make([]insn.Index, 0, 1+len(rest))
	out = append(out, leader)
	return append(out, rest...)
}

// BlockInsns returns the descriptors of the instructions in leader's block.
// Members outside the instruction sequence are skipped.
func (g *Graph) BlockInsns(leader insn.Index) []insn.Insn {
	idxs := g.MembersOf(leader)
	out := make([]insn.Insn, 0, len(idxs))
	for _, i := range idxs {
		if i >= 0 && i < len(g.insns) {
			out = append(out, g.insns[i])
		}
	}
	return out
}
