package arm64

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestDisassembleNOP(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], 0xd503201f)
	binary.LittleEndian.PutUint32(data[4:8], 0xd503201f)

	insts := Disassemble(data, Options{BaseAddr: 0x1000})
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2", len(insts))
	}
	if insts[1].Addr != 0x1004 {
		t.Errorf("addr[1] = 0x%x, want 0x1004", insts[1].Addr)
	}
	if !strings.EqualFold(insts[0].Mnemonic, "nop") {
		t.Errorf("mnemonic = %q, want NOP", insts[0].Mnemonic)
	}
	if insts[0].Op == 0 {
		t.Error("NOP should decode to a nonzero op")
	}
}

func TestDisassembleMaxSteps(t *testing.T) {
	data := make([]byte, 400)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], 0xd503201f)
	}
	if got := len(Disassemble(data, Options{MaxSteps: 10})); got != 10 {
		t.Fatalf("got %d instructions, want 10", got)
	}
}

func TestDisassembleShort(t *testing.T) {
	if got := len(Disassemble([]byte{0x01, 0x02}, Options{})); got != 0 {
		t.Fatalf("got %d instructions for 2 bytes", got)
	}
	if got := len(Disassemble(nil, Options{})); got != 0 {
		t.Fatalf("got %d instructions for nil data", got)
	}
}

func TestDisassembleUndecodable(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 0xFFFFFFFF)
	insts := Disassemble(data, Options{})
	if len(insts) != 1 {
		t.Fatalf("got %d instructions, want 1", len(insts))
	}
	if insts[0].Mnemonic != ".word" || insts[0].Op != 0 {
		t.Errorf("got %+v, want .word with op 0", insts[0])
	}
	if insts[0].Text != ".word 0xffffffff" {
		t.Errorf("text = %q", insts[0].Text)
	}
}
