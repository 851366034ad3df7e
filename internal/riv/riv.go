// Package riv implements random index vectors: fixed-dimensionality sparse
// vectors stored as a slice of elements sorted by index.
//
// Every vector keeps three invariants: indices lie in [0, Dims()), elements are
// strictly increasing by index, and no element has a zero value. Lookups and
// upserts use binary search over the sorted slice.
//
// Vectors are immutable by convention. Set, AddInPlace and SubtractInPlace
// mutate the receiver and must not race with any other use of the same vector;
// every other operation works on a copy and is safe on distinct vectors.
package riv

import (
	"fmt"
	"sort"
)

// RIV is a sparse random index vector.
type RIV struct {
	dims int
	elts []Element
}

// New returns an empty vector of the given dimensionality.
// Panics if dims is not positive.
func New(dims int) *RIV {
	if dims <= 0 {
		panic("riv: dims must be positive")
	}
	return &RIV{dims: dims, elts: []Element{}}
}

// FromArrays builds a vector from parallel index and value slices.
// Entries are sorted, values at repeated indices are summed and zero values
// are dropped. The input slices are not retained.
func FromArrays(dims int, indices []int, values []float64) (*RIV, error) {
	if len(indices) != len(values) {
		return nil, fmt.Errorf("%w: %d indices but %d values", ErrSizeMismatch, len(indices), len(values))
	}
	elts := make([]Element, len(indices))
	for i := range indices {
		elts[i] = Element{Index: indices[i], Value: values[i]}
	}
	return fromOwned(dims, elts)
}

// FromElements builds a vector from an element slice, with the same sorting,
// merging and zero filtering as FromArrays. The input slice is not retained.
func FromElements(dims int, elts []Element) (*RIV, error) {
	owned := make([]Element, len(elts))
	copy(owned, elts)
	return fromOwned(dims, owned)
}

// fromOwned takes ownership of elts.
func fromOwned(dims int, elts []Element) (*RIV, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDimensionality, dims)
	}
	for _, e := range elts {
		if e.Index < 0 || e.Index >= dims {
			return nil, fmt.Errorf("%w: index %d outside [0, %d)", ErrIndexOutOfBounds, e.Index, dims)
		}
	}
	sort.SliceStable(elts, func(i, j int) bool { return elts[i].Index < elts[j].Index })

	merged := elts[:0]
	for _, e := range elts {
		if n := len(merged); n > 0 && merged[n-1].Index == e.Index {
			merged[n-1] = merged[n-1].Add(e)
			continue
		}
		merged = append(merged, e)
	}
	v := &RIV{dims: dims, elts: merged}
	v.removeZeros()
	return v, nil
}

// Copy returns a deep copy of v.
func (v *RIV) Copy() *RIV {
	elts := make([]Element, len(v.elts))
	copy(elts, v.elts)
	return &RIV{dims: v.dims, elts: elts}
}

// Dims returns the dimensionality of v.
func (v *RIV) Dims() int { return v.dims }

// Count returns the number of stored (nonzero) entries.
func (v *RIV) Count() int { return len(v.elts) }

// Elements returns a copy of the entries in index order.
func (v *RIV) Elements() []Element {
	out := make([]Element, len(v.elts))
	copy(out, v.elts)
	return out
}

// Indices returns the stored indices in ascending order.
func (v *RIV) Indices() []int {
	out := make([]int, len(v.elts))
	for i, e := range v.elts {
		out[i] = e.Index
	}
	return out
}

// Values returns the stored values in index order.
func (v *RIV) Values() []float64 {
	out := make([]float64, len(v.elts))
	for i, e := range v.elts {
		out[i] = e.Value
	}
	return out
}

// Get returns the value at index, or 0 if no entry is stored there.
func (v *RIV) Get(index int) (float64, error) {
	if err := v.checkIndex(index); err != nil {
		return 0, err
	}
	if pos, ok := v.search(index); ok {
		return v.elts[pos].Value, nil
	}
	return 0, nil
}

// Contains reports whether an entry is stored at index.
func (v *RIV) Contains(index int) bool {
	_, ok := v.search(index)
	return ok
}

// Set writes value at index in place. Setting zero removes the entry.
func (v *RIV) Set(index int, value float64) error {
	if err := v.checkIndex(index); err != nil {
		return err
	}
	v.set(Element{Index: index, Value: value})
	return nil
}

// AddInPlace adds other into v.
func (v *RIV) AddInPlace(other *RIV) error {
	return v.merge(other, Element.Add)
}

// SubtractInPlace subtracts other from v.
func (v *RIV) SubtractInPlace(other *RIV) error {
	return v.merge(other, Element.Subtract)
}

// merge combines each entry of other with the matching entry of v and upserts
// the result. Cost is O(|other| log |v|) plus slice shifts on insertion.
func (v *RIV) merge(other *RIV, op func(Element, Element) Element) error {
	if v.dims != other.dims {
		return fmt.Errorf("%w: %d != %d", ErrSizeMismatch, v.dims, other.dims)
	}
	for _, o := range other.elts {
		v.upsert(op(v.point(o.Index), o))
	}
	v.removeZeros()
	return nil
}

// point returns the stored element at index, or a zero element.
func (v *RIV) point(index int) Element {
	if pos, ok := v.search(index); ok {
		return v.elts[pos]
	}
	return Element{Index: index}
}

// set upserts e and drops it if zero. index must already be validated.
func (v *RIV) set(e Element) {
	pos, ok := v.search(e.Index)
	switch {
	case ok && e.IsZero():
		v.elts = append(v.elts[:pos], v.elts[pos+1:]...)
	case ok:
		v.elts[pos] = e
	case !e.IsZero():
		v.insert(pos, e)
	}
}

// upsert writes e without filtering zeros; callers strip zeros afterwards.
func (v *RIV) upsert(e Element) {
	if pos, ok := v.search(e.Index); ok {
		v.elts[pos] = e
	} else {
		v.insert(pos, e)
	}
}

func (v *RIV) insert(pos int, e Element) {
	v.elts = append(v.elts, Element{})
	copy(v.elts[pos+1:], v.elts[pos:])
	v.elts[pos] = e
}

// search returns the position of index, or its insertion point and false.
func (v *RIV) search(index int) (int, bool) {
	pos := sort.Search(len(v.elts), func(i int) bool {
		return v.elts[i].Index >= index
	})
	return pos, pos < len(v.elts) && v.elts[pos].Index == index
}

func (v *RIV) removeZeros() {
	kept := v.elts[:0]
	for _, e := range v.elts {
		if !e.IsZero() {
			kept = append(kept, e)
		}
	}
	v.elts = kept
}

func (v *RIV) checkIndex(index int) error {
	if index < 0 || index >= v.dims {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrIndexOutOfBounds, index, v.dims)
	}
	return nil
}
