package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bbsim/internal/blocks"
	"bbsim/internal/insn"
	"bbsim/internal/output"
)

// BlocksReport lists every block of one procedure.
type BlocksReport struct {
	Name    string       `json:"name"`
	Insns   int          `json:"insns"`
	Edges   int          `json:"edges"`
	Skipped int          `json:"skipped,omitempty"`
	Dropped int          `json:"dropped,omitempty"`
	Blocks  []BlockEntry `json:"blocks"`
}

// BlockEntry is one leader with its members and successors.
type BlockEntry struct {
	Leader  insn.Index   `json:"leader"`
	Members []insn.Index `json:"members"`
	Succs   []insn.Index `json:"succs,omitempty"`
}

// NewBlocksCommand creates the blocks command.
func NewBlocksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <proc>",
		Short: "List basic blocks and block edges",
		Long: `Assemble the edge stream of a procedure into basic blocks and print every
leader (including leaders the traversal does not reach) with its members and
successors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(rootOpts, args[0], cmd)
		},
	}
}

func runBlocks(opts *RootOptions, path string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	p, err := e.load(path)
	if err != nil {
		return err
	}

	asm := blocks.Assemble(p)
	g := asm.Graph(p.Frames)
	rep := BlocksReport{
		Name:    p.Name,
		Insns:   len(p.Insns),
		Edges:   len(p.Edges),
		Skipped: asm.Skipped(),
		Dropped: g.Dropped(),
	}
	for _, l := range g.Leaders() {
		rep.Blocks = append(rep.Blocks, BlockEntry{
			Leader:  l,
			Members: g.MembersOf(l),
			Succs:   g.Successors(l),
		})
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return output.WriteJSON(w, rep)
	}
	writeBlocksText(w, rep)
	return nil
}

func writeBlocksText(w io.Writer, rep BlocksReport) {
	fmt.Fprintf(w, "%s: %d insns, %d edges, %d blocks\n", rep.Name, rep.Insns, rep.Edges, len(rep.Blocks))
	if rep.Skipped > 0 || rep.Dropped > 0 {
		fmt.Fprintf(w, "  skipped %d, dropped %d\n", rep.Skipped, rep.Dropped)
	}
	for _, b := range rep.Blocks {
		fmt.Fprintf(w, "bb%d [%s]", b.Leader, joinInts(b.Members))
		if len(b.Succs) > 0 {
			succs := make([]string, len(b.Succs))
			for i, s := range b.Succs {
				succs[i] = fmt.Sprintf("bb%d", s)
			}
			fmt.Fprintf(w, " -> %s", strings.Join(succs, " "))
		}
		fmt.Fprintln(w)
	}
}

func joinInts[T ~int | ~float64](xs []T) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
