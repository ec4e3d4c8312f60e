package arm64

// Branch classification from raw 32-bit ARM64 encodings.

// BranchInfo describes a decoded control-transfer instruction.
type BranchInfo struct {
	Target uint64 // absolute target address (0 for RET and register branches)
	Cond   bool   // conditional: execution may fall through
	IsRet  bool
}

// branchForm is one immediate-offset branch encoding.
type branchForm struct {
	mask, value uint32
	shift, bits uint // position and width of the word offset
	cond        bool
}

var branchForms = []branchForm{
	{mask: 0xFC000000, value: 0x14000000, shift: 0, bits: 26},             // B
	{mask: 0xFF000010, value: 0x54000000, shift: 5, bits: 19, cond: true}, // B.cond
	{mask: 0x7F000000, value: 0x34000000, shift: 5, bits: 19, cond: true}, // CBZ
	{mask: 0x7F000000, value: 0x35000000, shift: 5, bits: 19, cond: true}, // CBNZ
	{mask: 0x7F000000, value: 0x36000000, shift: 5, bits: 14, cond: true}, // TBZ
	{mask: 0x7F000000, value: 0x37000000, shift: 5, bits: 14, cond: true}, // TBNZ
}

// DecodeBranch decodes a block-terminating branch at pc. It returns nil for
// anything else, including BL/BLR, which return to the next instruction.
func DecodeBranch(raw uint32, pc uint64) *BranchInfo {
	// RET Xn
	if raw&0xFFFFFC1F == 0xD65F0000 {
		return &BranchInfo{IsRet: true}
	}
	for _, f := range branchForms {
		if raw&f.mask != f.value {
			continue
		}
		imm := (raw >> f.shift) & (1<<f.bits - 1)
		offset := int64(signExtend(imm, int(f.bits))) * 4
		return &BranchInfo{Target: uint64(int64(pc) + offset), Cond: f.cond}
	}
	return nil
}

// IsCall reports whether raw is BL imm26.
func IsCall(raw uint32) bool {
	return raw&0xFC000000 == 0x94000000
}

// IsTrap reports whether raw is BRK or UDF, which never fall through.
func IsTrap(raw uint32) bool {
	return raw&0xFFE0001F == 0xD4200000 || raw&0xFFFF0000 == 0
}

// signExtend sign-extends the low bits of val to int32.
func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
