package arm64

import (
	"bbsim/internal/insn"
)

// Lower converts decoded instructions into a procedure. Branches become
// jumps, BL becomes a method call, BRK/UDF become throws, and the opcode
// is the decoder's operation number.
//
// Edges are discovered the way a worklist dataflow pass reports them: from
// a LIFO stack seeded with the entry, each instruction is processed once
// and reports its fall-through edge before its branch target. Branches to
// addresses outside insts produce no edge.
func Lower(name string, insts []Inst) *insn.Procedure {
	p := &insn.Procedure{
		Name:  name,
		Insns: make([]insn.Insn, len(insts)),
	}
	byAddr := make(map[uint64]insn.Index, len(insts))
	for i, in := range insts {
		byAddr[in.Addr] = i
		p.Insns[i] = describe(in)
	}
	if len(insts) == 0 {
		return p
	}

	queued := make([]bool, len(insts))
	stack := []insn.Index{0}
	queued[0] = true
	edge := func(from, to insn.Index) {
		p.Edges = append(p.Edges, insn.FlowEdge{From: from, To: to})
		if !queued[to] {
			queued[to] = true
			stack = append(stack, to)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		in := insts[i]

		bi := DecodeBranch(in.Raw, in.Addr)
		switch {
		case bi == nil:
			if !IsTrap(in.Raw) && i+1 < len(insts) {
				edge(i, i+1)
			}
		case bi.IsRet:
		default:
			if bi.Cond && i+1 < len(insts) {
				edge(i, i+1)
			}
			if t, ok := byAddr[bi.Target]; ok {
				edge(i, t)
			}
		}
	}
	return p
}

func describe(in Inst) insn.Insn {
	out := insn.Insn{Opcode: int(in.Op), Text: in.Text}
	switch {
	case IsCall(in.Raw):
		out.Kind = insn.KindMethod
	case IsTrap(in.Raw):
		out.Throw = true
	default:
		if bi := DecodeBranch(in.Raw, in.Addr); bi != nil && !bi.IsRet {
			out.Kind = insn.KindJump
		}
	}
	return out
}
