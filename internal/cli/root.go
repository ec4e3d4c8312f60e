// Package cli implements the bbsim command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // YAML config path
	Base    uint64 // load address for raw ARM64 input
	Workers int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bbsim CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bbsim",
		Short: "bbsim - basic block similarity",
		Long: `Build basic block graphs from instruction edge streams, fingerprint each
block with a feature vector and compare procedures by graph distance.

Inputs ending in .bin are raw little-endian ARM64 code; anything else is a
YAML or JSON procedure file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "YAML config file")
	cmd.PersistentFlags().Uint64Var(&opts.Base, "base", 0, "load address for .bin input (overrides config)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "block metric workers (overrides config)")

	cmd.AddCommand(NewBlocksCommand(opts))
	cmd.AddCommand(NewMetricsCommand(opts))
	cmd.AddCommand(NewCompareCommand(opts))
	cmd.AddCommand(NewDotCommand(opts))

	return cmd
}
