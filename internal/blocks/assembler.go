// Package blocks groups instructions into basic blocks from a single forward
// pass of control-flow edges and indexes them as a directed block graph.
package blocks

import (
	"slices"

	"bbsim/internal/insn"
)

// Handle addresses a block record in an Assembler's arena.
type Handle int

// Edge is a block-to-block control-flow edge. From and To hold the member
// instruction indices of each block, leader first. Either side may be empty
// when the edge stream referenced an instruction with no block.
type Edge struct {
	From []insn.Index
	To   []insn.Index
}

// Assembler incrementally partitions instruction positions into blocks.
//
// Several instruction indices may map to the same Handle; appending to a
// block through one key is visible through every other key. Edges must be
// added in the order the dataflow pass discovered them, exactly once each.
type Assembler struct {
	insns   []insn.Insn
	arena   [][]insn.Index
	byIndex map[insn.Index]Handle
	edges   [][2]Handle
	skipped int
}

// NewAssembler returns an Assembler over insns with the -1 (no predecessor)
// and 0 (entry) keys seeded with empty blocks.
func NewAssembler(insns []insn.Insn) *Assembler {
	a := &Assembler{
		insns:   insns,
		byIndex: make(map[insn.Index]Handle, len(insns)+1),
	}
	a.byIndex[-1] = a.alloc()
	a.byIndex[0] = a.alloc()
	return a
}

// Assemble runs every edge of p through a new Assembler.
func Assemble(p *insn.Procedure) *Assembler {
	a := NewAssembler(p.Insns)
	for _, e := range p.Edges {
		a.Add(e)
	}
	return a
}

func (a *Assembler) alloc(members ...insn.Index) Handle {
	a.arena = append(a.arena, members)
	return Handle(len(a.arena) - 1)
}

func (a *Assembler) lookup(idx insn.Index) (Handle, bool) {
	h, ok := a.byIndex[idx]
	return h, ok
}

// lookupOrEmpty returns the block at idx or a fresh unregistered empty block.
func (a *Assembler) lookupOrEmpty(idx insn.Index) Handle {
	if h, ok := a.lookup(idx); ok {
		return h
	}
	return a.alloc()
}

// Add applies one control-flow edge notification. It reports false and
// leaves the state untouched when either endpoint is out of range.
func (a *Assembler) Add(e insn.FlowEdge) bool {
	n := len(a.insns)
	if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
		a.skipped++
		return false
	}
	from, to := e.From, e.To

	if a.insns[from].IsJump() {
		if abs(from-to) > 1 {
			if _, ok := a.lookup(to); !ok {
				a.byIndex[to] = a.alloc(to)
			}
		} else {
			h := a.alloc(from, to)
			a.byIndex[from] = h
			a.byIndex[to] = h
		}
		// The block of a jump is found through the instruction before it.
		fromBlock := a.lookupOrEmpty(from - 1)
		toBlock := a.byIndex[to]
		a.edges = append(a.edges, [2]Handle{fromBlock, toBlock})
		return true
	}

	h, ok := a.lookup(from - 1)
	if !ok {
		h = a.lookupOrEmpty(from)
	}
	a.arena[h] = append(a.arena[h], from)
	if !a.insns[to].IsJump() {
		a.arena[h] = append(a.arena[h], to)
	}
	a.byIndex[from] = h
	return true
}

// Skipped returns the number of notifications rejected as out of range.
func (a *Assembler) Skipped() int { return a.skipped }

// Block returns a copy of the block registered at idx.
func (a *Assembler) Block(idx insn.Index) ([]insn.Index, bool) {
	h, ok := a.lookup(idx)
	if !ok {
		return nil, false
	}
	return slices.Clone(a.arena[h]), true
}

// Keys returns every registered lookup key in ascending order, including the
// -1 and 0 sentinels.
func (a *Assembler) Keys() []insn.Index {
	keys := make([]insn.Index, 0, len(a.byIndex))
	for k := range a.byIndex {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Edges freezes the current block contents into block-to-block edges, in
// discovery order.
func (a *Assembler) Edges() []Edge {
	out := make([]Edge, len(a.edges))
	for i, e := range a.edges {
		out[i] = Edge{
			From: slices.Clone(a.arena[e[0]]),
			To:   slices.Clone(a.arena[e[1]]),
		}
	}
	return out
}

// Graph freezes the assembly into a Graph.
func (a *Assembler) Graph(frames []any) *Graph {
	return NewGraph(a.Edges(), a.insns, frames)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
