// Package procfile reads procedure descriptions (instructions plus their
// control-flow edge stream) from YAML or JSON files.
package procfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"bbsim/internal/insn"
)

// file is the on-disk layout.
type file struct {
	Name  string     `yaml:"name"`
	Insns []fileInsn `yaml:"insns"`
	Edges [][]int    `yaml:"edges"`
}

type fileInsn struct {
	Op    yaml.Node `yaml:"op"`
	Kind  string    `yaml:"kind"`
	Desc  string    `yaml:"desc"`
	Const yaml.Node `yaml:"const"`
	CType string    `yaml:"ctype"`
	Dims  int       `yaml:"dims"`
	Max   int       `yaml:"max"`
	Throw *bool     `yaml:"throw"`
}

// Runtime type names for load-constant operands by YAML scalar tag.
var constTypes = map[string]string{
	"!!str":   "java.lang.String",
	"!!int":   "java.lang.Integer",
	"!!float": "java.lang.Double",
	"!!bool":  "java.lang.Integer",
}

// Load reads a procedure file. The procedure is named after the file when
// the document has no name.
func Load(path string) (*insn.Procedure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("procfile: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse decodes a procedure document.
func Parse(data []byte) (*insn.Procedure, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("procfile: decode: %w", err)
	}

	p := &insn.Procedure{
		Name:  f.Name,
		Insns: make([]insn.Insn, 0, len(f.Insns)),
		Edges: make([]insn.FlowEdge, 0, len(f.Edges)),
	}
	for i, fi := range f.Insns {
		in, err := fi.decode()
		if err != nil {
			return nil, fmt.Errorf("procfile: insn %d: %w", i, err)
		}
		p.Insns = append(p.Insns, in)
	}
	for i, e := range f.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("procfile: edge %d: want [from, to], got %v", i, e)
		}
		p.Edges = append(p.Edges, insn.FlowEdge{From: e[0], To: e[1]})
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("procfile: %w", err)
	}
	return p, nil
}

func (fi fileInsn) decode() (insn.Insn, error) {
	op, err := opcode(fi.Op)
	if err != nil {
		return insn.Insn{}, err
	}

	in := insn.Insn{
		Opcode:    op,
		Kind:      insn.KindOf(op),
		Desc:      fi.Desc,
		ConstType: fi.CType,
		Dims:      fi.Dims,
		Max:       fi.Max,
		Throw:     op == insn.ATHROW,
	}
	if fi.Kind != "" {
		k, ok := insn.ParseKind(fi.Kind)
		if !ok {
			return insn.Insn{}, fmt.Errorf("line %d: unknown kind %q", fi.Op.Line, fi.Kind)
		}
		in.Kind = k
	}
	if fi.Throw != nil {
		in.Throw = *fi.Throw
	}
	if in.Kind == insn.KindLoadConst && in.ConstType == "" && fi.Const.Kind == yaml.ScalarNode {
		in.ConstType = constTypes[fi.Const.Tag]
	}
	return in, nil
}

// opcode accepts a JVM mnemonic or a decimal opcode.
func opcode(n yaml.Node) (int, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: missing op", n.Line)
	}
	if n.Tag == "!!int" {
		op, err := strconv.Atoi(n.Value)
		if err != nil {
			return 0, fmt.Errorf("line %d: op %q: %w", n.Line, n.Value, err)
		}
		return op, nil
	}
	op, ok := insn.Lookup(n.Value)
	if !ok {
		return 0, fmt.Errorf("line %d: unknown mnemonic %q", n.Line, n.Value)
	}
	return op, nil
}
