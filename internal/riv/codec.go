package riv

import (
	"fmt"
	"strconv"
	"strings"
)

// String serializes v as space separated "index|value" tokens in index order
// followed by the dimensionality, e.g. "0|1 1|3 4|2 5".
func (v *RIV) String() string {
	var b strings.Builder
	for _, e := range v.elts {
		b.WriteString(e.String())
		b.WriteByte(' ')
	}
	b.WriteString(strconv.Itoa(v.dims))
	return b.String()
}

// Parse reads the form written by String. The last token is the
// dimensionality; every other token is an element.
func Parse(s string) (*RIV, error) {
	fields := strings.Split(strings.TrimSpace(s), " ")
	last := len(fields) - 1
	dims, err := strconv.Atoi(fields[last])
	if err != nil {
		return nil, fmt.Errorf("%w: bad dimensionality %q: %v", ErrMalformed, fields[last], err)
	}
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensionality %d must be positive", ErrMalformed, dims)
	}

	elts := make([]Element, 0, last)
	for _, f := range fields[:last] {
		e, err := ParseElement(f)
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return fromOwned(dims, elts)
}

// MarshalText implements encoding.TextMarshaler.
func (v *RIV) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *RIV) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
