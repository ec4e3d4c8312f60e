// Package arm64 decodes raw ARM64 code into instruction descriptors and a
// control-flow edge stream for block assembly.
package arm64

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Inst is a decoded ARM64 instruction.
type Inst struct {
	Addr     uint64
	Raw      uint32
	Op       arm64asm.Op // 0 when the word does not decode
	Mnemonic string
	Text     string
}

// Options controls disassembly.
type Options struct {
	BaseAddr uint64 // address of the first byte of data
	MaxSteps int    // maximum instructions to decode; 0 = 1M
}

const defaultMaxSteps = 1_000_000

func (o Options) maxSteps() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return defaultMaxSteps
}

// Disassemble decodes little-endian ARM64 words from data. A trailing
// partial word is ignored; undecodable words become ".word" entries.
func Disassemble(data []byte, opts Options) []Inst {
	n := min(len(data)/4, opts.maxSteps())

	out := make([]Inst, 0, n)
	for i := 0; i < n; i++ {
		word := data[i*4 : i*4+4]
		in := Inst{
			Addr: opts.BaseAddr + uint64(i*4),
			Raw:  binary.LittleEndian.Uint32(word),
		}
		dec, err := arm64asm.Decode(word)
		if err != nil {
			in.Mnemonic = ".word"
			in.Text = fmt.Sprintf(".word 0x%08x", in.Raw)
		} else {
			in.Op = dec.Op
			in.Text = dec.String()
			in.Mnemonic, _, _ = strings.Cut(in.Text, " ")
		}
		out = append(out, in)
	}
	return out
}
