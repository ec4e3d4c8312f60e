package blocks

import (
	"iter"

	"bbsim/internal/insn"
)

// Root is the leader every traversal starts from.
const Root insn.Index = 0

// Node is a visited leader and its breadth-first depth from Root.
type Node struct {
	ID    insn.Index
	Depth int
}

// Record returns the node as (id, depth).
func (n Node) Record() []float64 {
	return []float64{float64(n.ID), float64(n.Depth)}
}

// Nodes yields the leaders reachable from Root in breadth-first order.
//
// The queue is FIFO and a node is marked visited when dequeued, so a node
// can be queued several times; only its first dequeue is yielded, and that
// one is at its shortest distance from Root. Root is always yielded, even
// when the graph has no edges.
func (g *Graph) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		queue := []Node{{ID: Root}}
		visited := make(map[insn.Index]bool, len(g.succs))
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if visited[cur.ID] {
				continue
			}
			visited[cur.ID] = true
			if !yield(cur) {
				return
			}
			for _, s := range g.Successors(cur.ID) {
				queue = append(queue, Node{ID: s, Depth: cur.Depth + 1})
			}
		}
	}
}

// Traverse applies fn to every node in breadth-first order from Root and
// returns the results in visit order.
func Traverse[T any](g *Graph, fn func(Node) T) []T {
	var out []T
	for n := range g.Nodes() {
		out = append(out, fn(n))
	}
	return out
}

// Records is Traverse with Node.Record as the projection.
func (g *Graph) Records() [][]float64 {
	return Traverse(g, Node.Record)
}
