package insn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRoundTrip(t *testing.T) {
	for _, name := range []string{"nop", "ldc", "ifeq", "goto", "getfield", "invokedynamic", "athrow", "jsr_w"} {
		op, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, Mnemonic(op))
	}

	op, ok := Lookup("GETFIELD")
	require.True(t, ok)
	assert.Equal(t, 180, op)

	_, ok = Lookup("frobnicate")
	assert.False(t, ok)
	assert.Equal(t, "op250", Mnemonic(250))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		op   int
		want Kind
	}{
		{0, KindGeneric},
		{LDC, KindLoadConst},
		{LDC2_W, KindLoadConst},
		{IFEQ, KindJump},
		{GOTO, KindJump},
		{IFNONNULL, KindJump},
		{GOTO_W, KindJump},
		{169, KindGeneric}, // ret
		{TABLESWITCH, KindTableSwitch},
		{171, KindGeneric}, // lookupswitch
		{180, KindField},
		{INVOKEVIRTUAL, KindMethod},
		{INVOKEINTERFACE, KindMethod},
		{INVOKEDYNAMIC, KindInvokeDynamic},
		{NEW, KindType},
		{CHECKCAST, KindType},
		{MULTIANEWARRAY, KindMultiArray},
		{ATHROW, KindGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.op), "opcode %d (%s)", tt.op, Mnemonic(tt.op))
	}
}

func TestParseKind(t *testing.T) {
	for k := KindGeneric; k <= KindType; k++ {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("bogus")
	assert.False(t, ok)
}

func TestInsnString(t *testing.T) {
	assert.Equal(t, "getfield I", Insn{Opcode: 180, Kind: KindField, Desc: "I"}.String())
	assert.Equal(t, "multianewarray [[I 2", Insn{Opcode: MULTIANEWARRAY, Kind: KindMultiArray, Desc: "[[I", Dims: 2}.String())
	assert.Equal(t, "tableswitch max=7", Insn{Opcode: TABLESWITCH, Kind: KindTableSwitch, Max: 7}.String())
	assert.Equal(t, "custom", Insn{Opcode: 0, Text: "custom"}.String())
}

func TestProcedureValidate(t *testing.T) {
	p := &Procedure{
		Name:  "p",
		Insns: make([]Insn, 3),
		Edges: []FlowEdge{{0, 1}, {1, 2}},
	}
	require.NoError(t, p.Validate())

	p.Edges = append(p.Edges, FlowEdge{2, 3})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge 2 (2 -> 3)")
}
