package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbsim/internal/arm64"
	"bbsim/internal/insn"
	"bbsim/internal/metrics"
)

func quiet() Options {
	return Options{Workers: 2, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// armSample lowers a function with a call, a conditional and a join, with
// opcodes renumbered 1..9 so every block has a distinct vector.
func armSample() *insn.Procedure {
	raws := []uint32{
		0xD2800000, // MOV X0, #0
		0x94000040, // BL
		0xB4000080, // CBZ X0, +0x10
		0xD2800021, // MOV X1, #1
		0x94000080, // BL
		0x14000003, // B +0xC
		0x940000C0, // BL
		0xD65F03C0, // RET
		0xD65F03C0, // RET
	}
	insts := make([]arm64.Inst, len(raws))
	for i, raw := range raws {
		insts[i] = arm64.Inst{Addr: 0x1000 + uint64(i*4), Raw: raw}
	}
	p := arm64.Lower("sample", insts)
	for i := range p.Insns {
		p.Insns[i].Opcode = i + 1
	}
	return p
}

func jvm(t *testing.T, name string, ops []string, edges ...insn.FlowEdge) *insn.Procedure {
	t.Helper()
	p := &insn.Procedure{Name: name, Edges: edges}
	for _, o := range ops {
		op, ok := insn.Lookup(o)
		require.True(t, ok, o)
		p.Insns = append(p.Insns, insn.Insn{Opcode: op, Kind: insn.KindOf(op)})
	}
	return p
}

func TestAnalyzeBlocks(t *testing.T) {
	res, err := Analyze(context.Background(), armSample(), quiet())
	require.NoError(t, err)

	assert.Equal(t, "sample", res.Name)
	assert.Equal(t, 9, res.Insns)
	assert.Equal(t, 8, res.Edges)
	assert.Zero(t, res.Skipped)
	assert.Zero(t, res.Dropped)

	require.Len(t, res.Blocks, 4)
	want := []struct {
		leader, depth int
		members       []insn.Index
	}{
		{0, 0, []insn.Index{0, 1, 1}},
		{2, 1, []insn.Index{2, 3, 3, 4, 4}},
		{6, 1, []insn.Index{6, 6, 7}},
		{8, 2, []insn.Index{8}},
	}
	for i, w := range want {
		b := res.Blocks[i]
		assert.Equal(t, w.leader, b.Leader, "block %d", i)
		assert.Equal(t, w.depth, b.Depth, "block %d", i)
		assert.Equal(t, w.members, b.Members, "block %d", i)
		assert.Equal(t, metrics.Calculate(res.Graph.BlockInsns(b.Leader)), b.Vector, "block %d", i)
	}
	assert.Equal(t, []insn.Index{2, 6}, res.Blocks[0].Succs)
	assert.Empty(t, res.Blocks[3].Succs)
}

func TestAnalyzeStraightLine(t *testing.T) {
	p := jvm(t, "line", []string{"iconst_1", "ireturn"}, insn.FlowEdge{From: 0, To: 1})
	res, err := Analyze(context.Background(), p, quiet())
	require.NoError(t, err)

	// No block edges: only the entry is visited, as a single-instruction block.
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, []insn.Index{0}, res.Blocks[0].Members)
	assert.Equal(t, 4.0, res.Blocks[0].Vector[metrics.Opcode])
}

func TestAnalyzeReportsSkipped(t *testing.T) {
	p := jvm(t, "bad", []string{"nop"}, insn.FlowEdge{From: 0, To: 5})
	res, err := Analyze(context.Background(), p, quiet())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, armSample(), quiet())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareIdentical(t *testing.T) {
	c, err := Compare(context.Background(), armSample(), armSample(), true, quiet())
	require.NoError(t, err)
	assert.Zero(t, c.Distance)
	require.Len(t, c.Triples, 4)
	for _, tr := range c.Triples {
		assert.Equal(t, tr.Point, tr.Nearest)
	}
}

func TestCompareDifferent(t *testing.T) {
	a := armSample()
	b := armSample()
	b.Name = "patched"
	b.Insns[3].Opcode += 10 // listed twice in block 2

	c, err := Compare(context.Background(), a, b, false, quiet())
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.Distance)
	assert.Nil(t, c.Triples)
	assert.Equal(t, "patched", c.B.Name)
}

func TestComparePoints(t *testing.T) {
	res, err := Analyze(context.Background(), armSample(), quiet())
	require.NoError(t, err)

	pts := res.Points()
	require.Len(t, pts, len(res.Blocks))
	assert.Equal(t, res.Blocks[1].Vector.Slice(), pts[1])
}
