package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbsim/internal/blocks"
	"bbsim/internal/insn"
)

func TestNumericValue(t *testing.T) {
	tests := []struct {
		r    rune
		want int
	}{
		{'0', 0}, {'7', 7}, {'a', 10}, {'A', 10}, {'I', 18}, {'z', 35}, {'Z', 35},
		{'/', 0}, {';', 0}, {'[', 0}, {'.', 0}, {'é', 0},
		{'５', 0}, {'Ａ', 0}, {'٣', 0}, {'Ⅻ', 0}, // non-ASCII digits and letters
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericValue(tt.r), "%q", tt.r)
	}
}

func TestDescriptorWeight(t *testing.T) {
	tests := []struct {
		desc string
		want float64
	}{
		{"I", 18},
		{"V", 31},
		{"[[I", 18},
		{"Ljava/lang/String;", 302},
		{"(Ljava/lang/String;I)V", 302 + 18 + 31},
		{"[Ljava/lang/Object;", 270},
		{"", 0},
		{"()", 0},
		{"java/lang/Object", 0}, // internal name, not a descriptor
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DescriptorWeight(tt.desc), tt.desc)
	}
}

func TestCharsWeight(t *testing.T) {
	assert.Equal(t, 281.0, CharsWeight("java.lang.String"))
	assert.Equal(t, 0.0, CharsWeight(""))
}

func TestCalculateSingleField(t *testing.T) {
	v := Calculate([]insn.Insn{{Opcode: 180, Kind: insn.KindField, Desc: "I"}})

	var want Vector
	want[Opcode] = 180
	want[Field] = 18
	assert.Equal(t, want, v)
}

func TestCalculateKinds(t *testing.T) {
	block := []insn.Insn{
		{Opcode: 25, Kind: insn.KindGeneric},
		{Opcode: insn.IFEQ, Kind: insn.KindJump},
		{Opcode: insn.INVOKEDYNAMIC, Kind: insn.KindInvokeDynamic, Desc: "()V"},
		{Opcode: insn.LDC, Kind: insn.KindLoadConst, ConstType: "java.lang.String"},
		{Opcode: insn.INVOKEVIRTUAL, Kind: insn.KindMethod, Desc: "(I)V"},
		{Opcode: insn.MULTIANEWARRAY, Kind: insn.KindMultiArray, Desc: "[[I", Dims: 2},
		{Opcode: insn.TABLESWITCH, Kind: insn.KindTableSwitch, Max: 12},
		{Opcode: insn.CHECKCAST, Kind: insn.KindType, Desc: "Ljava/lang/String;"},
	}
	v := Calculate(block)

	assert.Equal(t, 0.0, v[Field])
	assert.Equal(t, 0.0, v[Generic])
	assert.Equal(t, 31.0, v[InvokeDynamic])
	assert.Equal(t, float64(insn.IFEQ)*2.25, v[Jump])
	assert.Equal(t, 281.0, v[LoadConst])
	assert.Equal(t, 49.0, v[Method])
	assert.Equal(t, 36.0, v[MultiArray])
	assert.Equal(t, 12.0, v[TableSwitch])
	assert.Equal(t, 302.0, v[Type])

	var opcodes float64
	for _, in := range block {
		opcodes += float64(in.Opcode)
	}
	assert.Equal(t, opcodes, v[Opcode])
}

func TestCalculateThrowSkipsOpcode(t *testing.T) {
	v := Calculate([]insn.Insn{
		{Opcode: 187, Kind: insn.KindType, Desc: "Ljava/lang/Object;"},
		{Opcode: insn.ATHROW, Throw: true},
	})
	assert.Equal(t, 187.0, v[Opcode])
	assert.Equal(t, 270.0, v[Type])
}

func TestCalculateEmpty(t *testing.T) {
	assert.Equal(t, Vector{}, Calculate(nil))
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, Dims)
	assert.Equal(t, "field", names[Field])
	assert.Equal(t, "opcode", names[Opcode])
	assert.Equal(t, "type", names[Type])
}

func graph(t *testing.T) *blocks.Graph {
	t.Helper()
	ins := func(name string, kind insn.Kind, desc string) insn.Insn {
		op, ok := insn.Lookup(name)
		require.True(t, ok, name)
		return insn.Insn{Opcode: op, Kind: kind, Desc: desc}
	}
	p := &insn.Procedure{
		Insns: []insn.Insn{
			ins("aload_0", insn.KindGeneric, ""),
			ins("getfield", insn.KindField, "I"),
			ins("ifeq", insn.KindJump, ""),
			ins("iconst_1", insn.KindGeneric, ""),
			ins("ireturn", insn.KindGeneric, ""),
		},
		Edges: []insn.FlowEdge{{0, 1}, {1, 2}, {2, 3}, {2, 4}, {3, 4}},
	}
	return blocks.Assemble(p).Graph(nil)
}

func TestPoints(t *testing.T) {
	g := graph(t)
	pts := Points(g)
	require.Len(t, pts, len(g.Records()))
	for _, p := range pts {
		assert.Len(t, p, Dims)
	}
	assert.Equal(t, Calculate(g.BlockInsns(blocks.Root)).Slice(), pts[0])
}

func TestCalculateAll(t *testing.T) {
	g := graph(t)
	all, err := CalculateAll(context.Background(), g, 2)
	require.NoError(t, err)
	require.Len(t, all, len(g.Leaders()))
	for _, l := range g.Leaders() {
		assert.Equal(t, Calculate(g.BlockInsns(l)), all[l])
	}
}

func TestCalculateAllCancelled(t *testing.T) {
	g := graph(t)
	require.NotEmpty(t, g.Leaders())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CalculateAll(ctx, g, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
