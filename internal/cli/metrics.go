package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bbsim/internal/analysis"
	"bbsim/internal/metrics"
	"bbsim/internal/output"
)

// MetricsReport is the JSON form of the metrics command.
type MetricsReport struct {
	Features []string `json:"features"`
	*analysis.Result
}

// NewMetricsCommand creates the metrics command.
func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <proc>",
		Short: "Print block feature vectors in traversal order",
		Long: `Walk the block graph breadth-first from the entry block and print the
depth and feature vector of every visited block.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(rootOpts, args[0], cmd)
		},
	}
}

func runMetrics(opts *RootOptions, path string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	p, err := e.load(path)
	if err != nil {
		return err
	}
	res, err := analysis.Analyze(cmd.Context(), p, e.analysisOptions())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return output.WriteJSON(w, MetricsReport{Features: metrics.FeatureNames(), Result: res})
	}
	writeMetricsText(w, res)
	return nil
}

func writeMetricsText(w io.Writer, res *analysis.Result) {
	fmt.Fprintf(w, "%s: %d blocks visited\n", res.Name, len(res.Blocks))
	fmt.Fprintf(w, "# leader depth %s\n", strings.Join(metrics.FeatureNames(), " "))
	for _, b := range res.Blocks {
		fmt.Fprintf(w, "bb%d %d [%s]\n", b.Leader, b.Depth, joinInts(b.Vector.Slice()))
	}
}
