// Package distance scores the similarity of two point sequences by directed
// nearest/farthest matching.
package distance

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEmptySequence is returned when the shorter sequence has no point to
	// pad with.
	ErrEmptySequence = errors.New("distance: empty sequence")

	// ErrDimensionMismatch is returned for points of different dimension.
	ErrDimensionMismatch = errors.New("distance: dimension mismatch")

	// ErrNonFinite is returned when a distance is NaN or infinite.
	ErrNonFinite = errors.New("distance: non-finite distance")
)

// Triple is a point of the longer sequence with its nearest and farthest
// points in the padded shorter sequence.
type Triple struct {
	Point    []float64 `json:"point"`
	Nearest  []float64 `json:"nearest"`
	Farthest []float64 `json:"farthest"`
}

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	d := math.Sqrt(sum)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("%w: %v to %v", ErrNonFinite, a, b)
	}
	return d, nil
}

// split orders a and b into (shorter, longer). On equal length a is the
// shorter one.
func split(a, b [][]float64) (shorter, longer [][]float64) {
	if len(a) > len(b) {
		return b, a
	}
	return a, b
}

// pad repeats the last point of s until it has n points.
func pad(s [][]float64, n int) [][]float64 {
	out := make([][]float64, n)
	copy(out, s)
	last := s[len(s)-1]
	for i := len(s); i < n; i++ {
		out[i] = last
	}
	return out
}

// Match pairs every point of the longer of a and b with its nearest and
// farthest point in the shorter one, padded to the same length, and returns
// reduce applied to each triple in longer-sequence order. Ties go to the
// first point in scan order.
func Match[T any](a, b [][]float64, reduce func(Triple) T) ([]T, error) {
	shorter, longer := split(a, b)
	if len(shorter) == 0 {
		return nil, ErrEmptySequence
	}
	padded := pad(shorter, len(longer))

	out := make([]T, 0, len(longer))
	for _, p := range longer {
		lo, err := Euclidean(p, padded[0])
		if err != nil {
			return nil, err
		}
		hi := lo
		nearest, farthest := padded[0], padded[0]
		for _, q := range padded[1:] {
			d, err := Euclidean(p, q)
			if err != nil {
				return nil, err
			}
			if d < lo {
				lo, nearest = d, q
			}
			if d > hi {
				hi, farthest = d, q
			}
		}
		out = append(out, reduce(Triple{Point: p, Nearest: nearest, Farthest: farthest}))
	}
	return out, nil
}

// Triples is Match with the identity reduction.
func Triples(a, b [][]float64) ([]Triple, error) {
	return Match(a, b, func(t Triple) Triple { return t })
}

// Distance sums, over every point of the longer sequence, the distance to
// its nearest point in the padded shorter sequence. It is not symmetric in
// general and is zero only when every point of the longer sequence appears
// in the shorter one.
func Distance(a, b [][]float64) (float64, error) {
	ts, err := Triples(a, b)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range ts {
		d, err := Euclidean(t.Point, t.Nearest)
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum, nil
}
