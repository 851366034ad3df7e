package riv

import (
	"fmt"
	"math"
	"sort"

	"github.com/localrivet/rivet/internal/permutation"
)

// Add returns v + other. Entries that cancel to zero are removed.
func (v *RIV) Add(other *RIV) (*RIV, error) {
	out := v.Copy()
	if err := out.AddInPlace(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Subtract returns v - other. Entries that cancel to zero are removed.
func (v *RIV) Subtract(other *RIV) (*RIV, error) {
	out := v.Copy()
	if err := out.SubtractInPlace(other); err != nil {
		return nil, err
	}
	return out, nil
}

// Multiply scales every value by scalar. Multiplying by zero yields the empty vector.
func (v *RIV) Multiply(scalar float64) *RIV {
	return v.mapValues(func(x float64) float64 { return x * scalar })
}

// Divide divides every value by scalar. Dividing by zero is not guarded and
// produces infinite values.
func (v *RIV) Divide(scalar float64) *RIV {
	return v.mapValues(func(x float64) float64 { return x / scalar })
}

func (v *RIV) mapValues(fn func(float64) float64) *RIV {
	out := v.Copy()
	for i := range out.elts {
		out.elts[i].Value = fn(out.elts[i].Value)
	}
	out.removeZeros()
	return out
}

// Magnitude returns the Euclidean norm of v.
func (v *RIV) Magnitude() float64 {
	var sum float64
	for _, e := range v.elts {
		sum += e.Value * e.Value
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. Callers must check for the zero
// vector first; it has no entries, so the result is again the zero vector.
func (v *RIV) Normalize() *RIV {
	return v.Divide(v.Magnitude())
}

// Permute moves every index through the pair's tables: times > 0 applies
// Forward that many times, times < 0 applies Backward |times| times, and
// zero returns an unchanged copy. Values are untouched.
//
// Table length and entry ranges are checked; the tables are assumed to be
// inverses.
func (v *RIV) Permute(p permutation.Pair, times int) (*RIV, error) {
	if times == 0 {
		return v.Copy(), nil
	}
	table := p.Forward
	if times < 0 {
		table = p.Backward
		times = -times
	}
	if len(table) != v.dims {
		return nil, fmt.Errorf("%w: permutation table has %d entries, vector has %d dimensions",
			ErrSizeMismatch, len(table), v.dims)
	}

	out := v.Copy()
	for i := range out.elts {
		idx := out.elts[i].Index
		for n := 0; n < times; n++ {
			idx = table[idx]
			if idx < 0 || idx >= v.dims {
				return nil, fmt.Errorf("%w: permutation maps to %d, dimensionality %d",
					ErrIndexOutOfBounds, idx, v.dims)
			}
		}
		out.elts[i].Index = idx
	}
	sort.Slice(out.elts, func(i, j int) bool { return out.elts[i].Index < out.elts[j].Index })
	return out, nil
}

// Dot returns the inner product of v and other, walking both sorted entry
// lists once.
func (v *RIV) Dot(other *RIV) (float64, error) {
	if v.dims != other.dims {
		return 0, fmt.Errorf("%w: %d != %d", ErrSizeMismatch, v.dims, other.dims)
	}
	var sum float64
	i, j := 0, 0
	for i < len(v.elts) && j < len(other.elts) {
		a, b := v.elts[i], other.elts[j]
		switch {
		case a.Index < b.Index:
			i++
		case a.Index > b.Index:
			j++
		default:
			sum += a.Value * b.Value
			i++
			j++
		}
	}
	return sum, nil
}

// Similarity returns the cosine similarity of v and other in [-1, 1].
func (v *RIV) Similarity(other *RIV) (float64, error) {
	dot, err := v.Dot(other)
	if err != nil {
		return 0, err
	}
	ma, mb := v.Magnitude(), other.Magnitude()
	if ma == 0 || mb == 0 {
		return 0, ErrZeroMagnitude
	}
	return dot / (ma * mb), nil
}

// Equal reports whether v and other have the same dimensionality and exactly
// the same entries. No floating point tolerance is applied.
func (v *RIV) Equal(other *RIV) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || v.dims != other.dims || len(v.elts) != len(other.elts) {
		return false
	}
	for i := range v.elts {
		if v.elts[i] != other.elts[i] {
			return false
		}
	}
	return true
}
