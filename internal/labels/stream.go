package labels

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrTooManyEntries is returned when more distinct indices are requested than
// the range can supply.
var ErrTooManyEntries = errors.New("labels: more entries requested than dimensions")

// RandInts returns count distinct integers from [0, bound), drawn from a
// math/rand stream seeded with seed and skipping repeats. The same arguments
// always produce the same sequence.
func RandInts(bound, count int, seed int64) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("labels: negative count %d", count)
	}
	if count > bound {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyEntries, count, bound)
	}
	r := rand.New(rand.NewSource(seed)) //nolint:gosec
	seen := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for len(out) < count {
		n := r.Intn(bound)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// Indices returns k distinct coordinates in [0, dims) for seed.
func Indices(dims, k int, seed int64) ([]int, error) {
	return RandInts(dims, k, seed)
}

// Values returns k values, half +1 and half -1, shuffled by seed.
// k must be even.
func Values(k int, seed int64) ([]float64, error) {
	base := make([]float64, k)
	for i := range base {
		if i < k/2 {
			base[i] = 1
		} else {
			base[i] = -1
		}
	}
	order, err := RandInts(k, k, seed)
	if err != nil {
		return nil, err
	}
	out := make([]float64, k)
	for i, j := range order {
		out[i] = base[j]
	}
	return out, nil
}
