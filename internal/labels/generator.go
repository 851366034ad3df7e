package labels

import (
	"fmt"

	"github.com/localrivet/rivet/internal/riv"
)

// Generator is the seeded Labeler. A Generator holds no state beyond its
// parameters, so it is safe for concurrent use.
type Generator struct {
	dims int
	k    int
}

var _ Labeler = (*Generator)(nil)

// NewGenerator creates a Generator producing vectors of dims dimensions with
// k nonzero entries (rounded up to even).
func NewGenerator(dims, k int) *Generator {
	return &Generator{dims: dims, k: NormalizeK(k)}
}

// Initialize validates the generator parameters.
func (g *Generator) Initialize() error {
	if g.dims <= 0 {
		return fmt.Errorf("labels: dimensionality must be positive, got %d", g.dims)
	}
	if g.k < 0 {
		return fmt.Errorf("labels: k must not be negative, got %d", g.k)
	}
	if g.k > g.dims {
		return fmt.Errorf("%w: k=%d, dimensionality=%d", ErrTooManyEntries, g.k, g.dims)
	}
	return nil
}

// Dims returns the dimensionality of generated labels.
func (g *Generator) Dims() int { return g.dims }

// K returns the (even) number of nonzero entries per label.
func (g *Generator) K() int { return g.k }

// Label returns the label vector for word. Identical words always produce
// identical vectors.
func (g *Generator) Label(word string) (*riv.RIV, error) {
	return Generate(g.dims, g.k, word)
}

// LabelAt labels the token of the given rune length starting at rune offset
// start in source. The range is clamped to the source.
func (g *Generator) LabelAt(source string, start, length int) (*riv.RIV, error) {
	return g.Label(subRunes(source, start, start+length))
}

// SourceFunc returns a labeler keyed by position in source. Each call labels
// the length runes starting at the given offset.
func (g *Generator) SourceFunc(source string, length int) func(int) (*riv.RIV, error) {
	return func(start int) (*riv.RIV, error) {
		return g.LabelAt(source, start, length)
	}
}

// Func returns Label as a plain function.
func (g *Generator) Func() func(string) (*riv.RIV, error) {
	return g.Label
}

// Empty returns a zero vector with the generator's dimensionality.
func (g *Generator) Empty() *riv.RIV {
	return riv.New(g.dims)
}

// Generate builds the label for word: NormalizeK(k) distinct indices paired
// with balanced +1/-1 values, both driven by DeriveSeed(word).
func Generate(dims, k int, word string) (*riv.RIV, error) {
	seed := DeriveSeed(word)
	k = NormalizeK(k)
	indices, err := Indices(dims, k, seed)
	if err != nil {
		return nil, err
	}
	values, err := Values(k, seed)
	if err != nil {
		return nil, err
	}
	return riv.FromArrays(dims, indices, values)
}

// subRunes returns runes [start, end) of s, clamping both ends.
func subRunes(s string, start, end int) string {
	rs := []rune(s)
	if start < 0 {
		start = 0
	}
	if end > len(rs) {
		end = len(rs)
	}
	if start >= end {
		return ""
	}
	return string(rs[start:end])
}
