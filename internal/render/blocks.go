package render

import (
	"fmt"
	"slices"
	"strings"

	"bbsim/internal/blocks"
	"bbsim/internal/insn"
)

// maxInsnText caps the width of one instruction line in a block label.
const maxInsnText = 60

// BlockDOT renders a block graph as DOT. Each leader is a node listing its
// member instructions (elided past maxLines) and its traversal depth. The
// entry block is outlined, blocks without successors are shaded and edges
// back to a lower or equal leader are drawn as loops.
func BlockDOT(name string, g *blocks.Graph, t Theme, maxLines int) string {
	depth := make(map[insn.Index]int)
	for n := range g.Nodes() {
		depth[n.ID] = n.Depth
	}
	leaders := g.Leaders()
	if !g.HasNode(blocks.Root) {
		leaders = slices.Insert(leaders, 0, blocks.Root)
	}

	var b strings.Builder
	b.WriteString("digraph cfg {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  nodesep=0.3;\n")
	b.WriteString("  ranksep=0.4;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Courier,monospace\", fontsize=8, fontcolor=%q, margin=\"0.08,0.04\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	b.WriteString("  edge [penwidth=0.7, arrowsize=0.5, arrowhead=vee];\n")
	b.WriteString("  labelloc=t;\n  labeljust=l;\n")
	fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"9\" color=\"%s\">%s</font>>;\n",
		t.TextColor, dotEscape(name))
	b.WriteByte('\n')

	insns := g.Insns()
	for _, l := range leaders {
		d, reached := depth[l]
		header := fmt.Sprintf("bb%d", l)
		if reached {
			header += fmt.Sprintf("  depth %d", d)
		}

		var lines []string
		for _, m := range g.MembersOf(l) {
			text := "?"
			if m >= 0 && m < len(insns) {
				text = insns[m].String()
			}
			lines = append(lines, dotEscape(truncLabel(fmt.Sprintf("%d: %s", m, text), maxInsnText)))
		}
		lines = append([]string{dotEscape(header)}, elide(lines, maxLines)...)
		label := strings.Join(lines, "<br align=\"left\"/>") + "<br align=\"left\"/>"

		attrs := ""
		if l == blocks.Root {
			attrs = fmt.Sprintf(", penwidth=1.5, color=%q", t.EntryBorder)
		}
		switch {
		case !reached:
			attrs += fmt.Sprintf(", fontcolor=%q", t.Unreached)
		case len(g.Successors(l)) == 0:
			attrs += fmt.Sprintf(", fillcolor=%q", t.TermFill)
		}
		fmt.Fprintf(&b, "  bb%d [label=<%s>%s];\n", l, label, attrs)
	}
	b.WriteByte('\n')

	for _, e := range g.EdgePairs() {
		color := t.EdgeForward
		if e[1] <= e[0] {
			color = t.EdgeBack
		}
		fmt.Fprintf(&b, "  bb%d -> bb%d [color=%q];\n", e[0], e[1], color)
	}

	b.WriteString("}\n")
	return b.String()
}
