package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
	"github.com/zboralski/lattice"
	lrender "github.com/zboralski/lattice/render"

	"bbsim/internal/blocks"
	"bbsim/internal/output"
	"bbsim/internal/render"
)

// DotOptions holds dot-specific flags.
type DotOptions struct {
	Style    string // themed | lattice; empty uses the config
	Theme    string
	Output   string
	MaxLines int
}

// NewDotCommand creates the dot command.
func NewDotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DotOptions{}

	cmd := &cobra.Command{
		Use:   "dot <proc>",
		Short: "Render the block graph as Graphviz DOT",
		Long: `Render the block graph of a procedure as Graphviz DOT.

The themed style lists each block's instructions with its traversal depth.
The lattice style converts the graph to a lattice CFG and uses its renderer.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDot(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Style, "style", "", "themed|lattice (default from config)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "nasa", "color theme for the themed style")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write DOT to file instead of stdout")
	cmd.Flags().IntVar(&opts.MaxLines, "max-lines", 0, "instruction lines per block (default from config)")

	return cmd
}

func runDot(opts *RootOptions, dopts *DotOptions, path string, cmd *cobra.Command) error {
	e, err := newEnv(opts, cmd)
	if err != nil {
		return err
	}
	style := e.cfg.Render.Style
	if dopts.Style != "" {
		style = dopts.Style
	}
	maxLines := e.cfg.Render.MaxLines
	if dopts.MaxLines > 0 {
		maxLines = dopts.MaxLines
	}

	p, err := e.load(path)
	if err != nil {
		return err
	}
	g := blocks.Assemble(p).Graph(p.Frames)

	var dot string
	switch style {
	case "themed":
		theme, ok := render.Themes[dopts.Theme]
		if !ok {
			return fmt.Errorf("unknown theme %q: must be one of %v", dopts.Theme, slices.Sorted(maps.Keys(render.Themes)))
		}
		dot = render.BlockDOT(p.Name, g, theme, maxLines)
	case "lattice":
		cfg := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{g.Lattice(p.Name)}}
		dot = lrender.DOTCFG(cfg, p.Name)
	default:
		return fmt.Errorf("invalid style %q: must be themed or lattice", style)
	}

	if dopts.Output == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
		return err
	}
	if err := output.WriteFile(dopts.Output, []byte(dot)); err != nil {
		return err
	}
	e.log.Info("wrote dot", "file", dopts.Output, "style", style, "blocks", len(g.Leaders()))
	return nil
}
