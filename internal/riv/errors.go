package riv

import "errors"

// Errors surfaced by vector operations. Callers should match them with errors.Is;
// the returned errors wrap these with the offending values.
var (
	// ErrSizeMismatch is returned when two vectors (or a vector and a
	// permutation table) disagree on dimensionality.
	ErrSizeMismatch = errors.New("riv: size mismatch")

	// ErrIndexOutOfBounds is returned when an index outside [0, dims) is read or written.
	ErrIndexOutOfBounds = errors.New("riv: index out of bounds")

	// ErrMalformed is returned when text cannot be parsed as a vector or element.
	ErrMalformed = errors.New("riv: malformed input")

	// ErrInvalidDimensionality is returned when a vector is built with dims <= 0.
	ErrInvalidDimensionality = errors.New("riv: dimensionality must be positive")

	// ErrZeroMagnitude is returned by Similarity when either vector has no entries.
	ErrZeroMagnitude = errors.New("riv: zero magnitude vector")
)
