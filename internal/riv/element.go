package riv

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is a single (index, value) entry of a sparse vector.
type Element struct {
	Index int
	Value float64
}

// Elt is shorthand for Element{Index: index, Value: value}.
func Elt(index int, value float64) Element {
	return Element{Index: index, Value: value}
}

// Add returns e with o's value added. The index of e is kept.
func (e Element) Add(o Element) Element {
	return Element{Index: e.Index, Value: e.Value + o.Value}
}

// Subtract returns e with o's value subtracted. The index of e is kept.
func (e Element) Subtract(o Element) Element {
	return Element{Index: e.Index, Value: e.Value - o.Value}
}

// Compare orders elements by index only.
func (e Element) Compare(o Element) int {
	switch {
	case e.Index < o.Index:
		return -1
	case e.Index > o.Index:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether the element carries no weight.
func (e Element) IsZero() bool { return e.Value == 0 }

// String formats the element as "index|value".
func (e Element) String() string {
	return strconv.Itoa(e.Index) + "|" + formatValue(e.Value)
}

// ParseElement parses the "index|value" form produced by Element.String.
func ParseElement(s string) (Element, error) {
	idx, val, ok := strings.Cut(s, "|")
	if !ok {
		return Element{}, fmt.Errorf("%w: element %q has no '|' separator", ErrMalformed, s)
	}
	i, err := strconv.Atoi(idx)
	if err != nil {
		return Element{}, fmt.Errorf("%w: element %q: bad index: %v", ErrMalformed, s, err)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return Element{}, fmt.Errorf("%w: element %q: bad value: %v", ErrMalformed, s, err)
	}
	return Element{Index: i, Value: v}, nil
}

// formatValue uses the shortest representation that parses back to the same float64.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
