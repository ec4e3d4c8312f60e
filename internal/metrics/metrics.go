// Package metrics computes a fixed-size feature vector summarizing the
// instructions of one basic block.
package metrics

import (
	"regexp"

	"bbsim/internal/insn"
)

// Feature positions within a Vector. The order is part of the contract:
// distances are only meaningful between vectors laid out identically.
const (
	Field = iota
	Generic
	InvokeDynamic
	Jump
	LoadConst
	Method
	MultiArray
	Opcode
	TableSwitch
	Type

	Dims
)

var featureNames = [Dims]string{
	"field", "generic", "invokedynamic", "jump", "ldc",
	"method", "multianewarray", "opcode", "tableswitch", "type",
}

// FeatureNames returns the feature labels in Vector order.
func FeatureNames() []string { return featureNames[:] }

// Vector is a block's feature vector.
type Vector [Dims]float64

// Slice returns the vector as a point for distance computation.
func (v Vector) Slice() []float64 { return v[:] }

// jumpWeight scales a jump's opcode into the jump feature.
const jumpWeight = 2.25

// Calculate accumulates the feature vector of a block's instructions, in
// block order.
func Calculate(insns []insn.Insn) Vector {
	var v Vector
	for _, in := range insns {
		v.measure(in)
	}
	return v
}

func (v *Vector) measure(in insn.Insn) {
	switch in.Kind {
	case insn.KindField:
		v[Field] += DescriptorWeight(in.Desc)
	case insn.KindInvokeDynamic:
		v[InvokeDynamic] += DescriptorWeight(in.Desc)
	case insn.KindLoadConst:
		v[LoadConst] += CharsWeight(in.ConstType)
	case insn.KindMethod:
		v[Method] += DescriptorWeight(in.Desc)
	case insn.KindMultiArray:
		v[MultiArray] += DescriptorWeight(in.Desc) * float64(in.Dims)
	case insn.KindTableSwitch:
		v[TableSwitch] += float64(in.Max)
	case insn.KindType:
		v[Type] += DescriptorWeight(in.Desc)
	case insn.KindJump:
		v[Jump] += float64(in.Opcode) * jumpWeight
	}
	if !in.Throw {
		v[Opcode] += float64(in.Opcode)
	}
}

// descriptorRE matches an object or array-of-object type, or a single
// primitive type character.
var descriptorRE = regexp.MustCompile(`\[*L[^;]+;|[BCDFIJSVZ]`)

// DescriptorWeight sums the NumericValue of every character of every type
// matched in a JVM descriptor.
func DescriptorWeight(desc string) float64 {
	var w float64
	for _, m := range descriptorRE.FindAllString(desc, -1) {
		w += CharsWeight(m)
	}
	return w
}

// CharsWeight sums the NumericValue of every character of s.
func CharsWeight(s string) float64 {
	var w int
	for _, r := range s {
		w += NumericValue(r)
	}
	return float64(w)
}

// NumericValue returns the base-36 digit value of an ASCII digit or letter
// ('0'..'9' -> 0..9, 'a'/'A'..'z'/'Z' -> 10..35) and 0 for anything else.
//
// Only ASCII is recognized. Other Unicode digits and letters (fullwidth
// forms, non-Latin digits, Roman numerals) weigh 0, as does punctuation;
// Java's Character.getNumericValue would return their digit value or -1.
func NumericValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return 0
}
