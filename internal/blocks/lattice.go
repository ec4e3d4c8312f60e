package blocks

import (
	"slices"

	"github.com/zboralski/lattice"

	"bbsim/internal/insn"
)

// Lattice converts the graph to a lattice.FuncCFG. Blocks are numbered in
// ascending leader order; Start/End span the lowest and highest member.
// Method-call instructions become call sites labelled with their descriptor.
func (g *Graph) Lattice(name string) *lattice.FuncCFG {
	leaders := g.Leaders()
	ids := make(map[insn.Index]int, len(leaders))
	for i, l := range leaders {
		ids[l] = i
	}

	lcfg := &lattice.FuncCFG{Name: name}
	for i, l := range leaders {
		members := g.MembersOf(l)
		lb := &lattice.BasicBlock{
			ID:    i,
			Start: slices.Min(members),
			End:   slices.Max(members) + 1,
		}

		succs := g.Successors(l)
		lb.Term = len(succs) == 0
		for _, s := range succs {
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: ids[s]})
		}

		for _, m := range members {
			if m < 0 || m >= len(g.insns) {
				continue
			}
			if in := g.insns[m]; in.Kind == insn.KindMethod {
				callee := in.Desc
				if callee == "" {
					callee = in.String()
				}
				lb.Calls = append(lb.Calls, lattice.CallSite{Offset: m, Callee: callee})
			}
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}
