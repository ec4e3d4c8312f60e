package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bbsim/internal/analysis"
	"bbsim/internal/arm64"
	"bbsim/internal/config"
	"bbsim/internal/elfx"
	"bbsim/internal/insn"
	"bbsim/internal/procfile"
)

// env is the per-invocation state shared by subcommands.
type env struct {
	cfg config.Config
	log *slog.Logger
}

// newEnv loads the config and applies flag overrides. Diagnostics go to the
// command's stderr so JSON on stdout stays clean.
func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("base") {
		cfg.Analysis.BaseAddr = opts.Base
	}
	if cmd.Flags().Changed("workers") {
		cfg.Analysis.Workers = opts.Workers
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) analysisOptions() analysis.Options {
	return analysis.Options{Workers: e.cfg.Analysis.Workers, Logger: e.log}
}

// load reads one procedure. "lib.so#func" selects a function symbol from an
// ARM64 ELF image, files ending in .bin are raw ARM64 code, and anything else
// is a procedure file.
func (e *env) load(path string) (*insn.Procedure, error) {
	if file, sym, ok := strings.Cut(path, "#"); ok {
		return e.loadELF(file, sym)
	}
	if !strings.EqualFold(filepath.Ext(path), ".bin") {
		return procfile.Load(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return e.lower(path, name, data, e.cfg.Analysis.BaseAddr)
}

func (e *env) loadELF(path, sym string) (*insn.Procedure, error) {
	ef, err := elfx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer ef.Close()

	if sym == "" {
		return nil, fmt.Errorf("%s: no symbol after '#'; functions: %s", path, strings.Join(ef.Functions(), " "))
	}
	addr, code, err := ef.Function(sym)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e.lower(path, sym, code, addr)
}

func (e *env) lower(path, name string, code []byte, base uint64) (*insn.Procedure, error) {
	insts := arm64.Disassemble(code, arm64.Options{
		BaseAddr: base,
		MaxSteps: e.cfg.Analysis.MaxSteps,
	})
	if len(insts) == 0 {
		return nil, fmt.Errorf("%s: %s: no instructions", path, name)
	}
	p := arm64.Lower(name, insts)
	e.log.Debug("lowered arm64", "file", path, "proc", name, "base", fmt.Sprintf("0x%x", base),
		"insts", len(insts), "edges", len(p.Edges))
	return p, nil
}
