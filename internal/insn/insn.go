// Package insn defines the instruction descriptors and control-flow edge
// stream consumed by block assembly.
package insn

import "fmt"

// Index is the position of an instruction within a procedure's linear
// instruction sequence. Positions are dense and zero-based.
type Index = int

// Kind classifies an instruction by the operand fields it carries.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindJump
	KindField
	KindInvokeDynamic
	KindLoadConst
	KindMethod
	KindMultiArray
	KindTableSwitch
	KindType
)

var kindNames = [...]string{
	KindGeneric:       "generic",
	KindJump:          "jump",
	KindField:         "field",
	KindInvokeDynamic: "invokedynamic",
	KindLoadConst:     "ldc",
	KindMethod:        "method",
	KindMultiArray:    "multianewarray",
	KindTableSwitch:   "tableswitch",
	KindType:          "type",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind resolves a kind name as printed by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return KindGeneric, false
}

// Insn describes one instruction. Only the operand fields relevant to Kind
// are meaningful.
type Insn struct {
	Opcode    int
	Kind      Kind
	Desc      string // type or member descriptor (field, method, indy, type, multianewarray)
	ConstType string // runtime type name of a load-constant operand
	Dims      int    // multianewarray dimension count
	Max       int    // tableswitch upper bound
	Throw     bool
	Text      string // display only
}

// IsJump reports whether the instruction is a branch or jump.
func (i Insn) IsJump() bool { return i.Kind == KindJump }

// String returns Text when set, otherwise the mnemonic and operand.
func (i Insn) String() string {
	if i.Text != "" {
		return i.Text
	}
	s := Mnemonic(i.Opcode)
	switch i.Kind {
	case KindField, KindInvokeDynamic, KindMethod, KindType:
		s += " " + i.Desc
	case KindMultiArray:
		s += fmt.Sprintf(" %s %d", i.Desc, i.Dims)
	case KindLoadConst:
		s += " " + i.ConstType
	case KindTableSwitch:
		s += fmt.Sprintf(" max=%d", i.Max)
	}
	return s
}

// FlowEdge is a single control-flow edge notification from instruction
// From to instruction To.
type FlowEdge struct {
	From Index
	To   Index
}

// Procedure is one procedure's instruction sequence together with the
// control-flow edges reported for it, in discovery order. Edges must be
// consumed in slice order and exactly once.
type Procedure struct {
	Name   string
	Insns  []Insn
	Edges  []FlowEdge
	Frames []any // opaque per-instruction analysis frames
}

// Validate checks that every edge references an instruction in range.
func (p *Procedure) Validate() error {
	n := len(p.Insns)
	for i, e := range p.Edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return fmt.Errorf("insn: %s: edge %d (%d -> %d) out of range [0,%d)", p.Name, i, e.From, e.To, n)
		}
	}
	return nil
}
