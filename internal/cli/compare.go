package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bbsim/internal/analysis"
	"bbsim/internal/insn"
	"bbsim/internal/output"
)

// CompareOptions holds compare-specific flags.
type CompareOptions struct {
	Triples bool
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare <procA> <procB>",
		Short: "Score the similarity of two procedures",
		Long: `Fingerprint both procedures and print the sum of Euclidean distances from
each block of the shorter one to its nearest block in the other. Zero means
identical block fingerprints.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Triples, "triples", false, "print the nearest and farthest match of every point")

	return cmd
}

func runCompare(opts *RootOptions, copts *CompareOptions, pathA, pathB string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}

	var a, b *insn.Procedure
	var eg errgroup.Group
	eg.Go(func() (err error) {
		a, err = e.load(pathA)
		return err
	})
	eg.Go(func() (err error) {
		b, err = e.load(pathB)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	c, err := analysis.Compare(cmd.Context(), a, b, copts.Triples, e.analysisOptions())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return output.WriteJSON(w, c)
	}
	writeCompareText(w, c)
	return nil
}

func writeCompareText(w io.Writer, c *analysis.Comparison) {
	fmt.Fprintf(w, "%s (%d blocks) vs %s (%d blocks): %g\n",
		c.A.Name, len(c.A.Blocks), c.B.Name, len(c.B.Blocks), c.Distance)
	for _, t := range c.Triples {
		fmt.Fprintf(w, "  [%s] nearest [%s] farthest [%s]\n",
			joinInts(t.Point), joinInts(t.Nearest), joinInts(t.Farthest))
	}
}
