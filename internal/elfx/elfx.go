// Package elfx extracts ARM64 function code from ELF images by symbol.
package elfx

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotELF       = errors.New("elfx: not an ELF file")
	ErrNotARM64     = errors.New("elfx: not ARM64 (EM_AARCH64)")
	ErrNot64Bit     = errors.New("elfx: not 64-bit ELF")
	ErrNoSymbol     = errors.New("elfx: symbol not found")
	ErrNoSegment    = errors.New("elfx: no PT_LOAD segment covers address")
	ErrSymbolNoSize = errors.New("elfx: symbol has zero size")
)

// File is an opened ARM64 ELF image.
type File struct {
	ELF  *elf.File
	raw  *os.File
	size int64
}

// Open opens an ELF file and checks it is 64-bit ARM64.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfx: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}
	if ef.Class != elf.ELFCLASS64 {
		f.Close()
		return nil, ErrNot64Bit
	}
	if ef.Machine != elf.EM_AARCH64 {
		f.Close()
		return nil, ErrNotARM64
	}

	return &File{ELF: ef, raw: f, size: info.Size()}, nil
}

// Close releases the underlying file.
func (f *File) Close() error {
	return f.raw.Close()
}

// Symbol looks up name in the static symbol table, then the dynamic one.
func (f *File) Symbol(name string) (elf.Symbol, error) {
	for _, load := range []func() ([]elf.Symbol, error){f.ELF.Symbols, f.ELF.DynamicSymbols} {
		syms, err := load()
		if err != nil {
			if errors.Is(err, elf.ErrNoSymbols) {
				continue
			}
			return elf.Symbol{}, fmt.Errorf("elfx: symbols: %w", err)
		}
		for _, s := range syms {
			if s.Name == name {
				return s, nil
			}
		}
	}
	return elf.Symbol{}, fmt.Errorf("%w: %s", ErrNoSymbol, name)
}

// Functions returns the names of sized function symbols in the static and
// dynamic tables.
func (f *File) Functions() []string {
	var names []string
	seen := make(map[string]bool)
	for _, load := range []func() ([]elf.Symbol, error){f.ELF.Symbols, f.ELF.DynamicSymbols} {
		syms, _ := load()
		for _, s := range syms {
			if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Size == 0 || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}

// Function returns the load address and code bytes of the function symbol
// name.
func (f *File) Function(name string) (uint64, []byte, error) {
	s, err := f.Symbol(name)
	if err != nil {
		return 0, nil, err
	}
	if s.Size == 0 {
		return 0, nil, fmt.Errorf("%w: %s", ErrSymbolNoSize, name)
	}
	code, err := f.ReadBytesAtVA(s.Value, int(s.Size))
	if err != nil {
		return 0, nil, fmt.Errorf("elfx: %s: %w", name, err)
	}
	return s.Value, code, nil
}

// VAToFileOffset converts a virtual address to a file offset using PT_LOAD segments.
func (f *File) VAToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Filesz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(f.size) {
				return 0, fmt.Errorf("elfx: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}

// ReadBytesAtVA reads up to n bytes starting at va, clamped to the file.
func (f *File) ReadBytesAtVA(va uint64, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	if avail := f.size - int64(off); n < 0 || int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	m, err := f.raw.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("elfx: read at 0x%x: %w", off, err)
	}
	return buf[:m], nil
}
