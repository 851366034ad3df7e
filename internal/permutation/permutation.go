// Package permutation provides the pair of inverse index tables used to
// rotate random index vectors when encoding word order.
package permutation

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPair is returned by Load when a table file is inconsistent.
var ErrInvalidPair = errors.New("permutation: invalid pair")

// Pair holds two index tables of equal length. Forward[i] is where index i
// moves on a positive rotation, Backward undoes it.
//
// Vector code trusts that the tables are true inverses; Generate guarantees
// this, hand-built pairs must guarantee it themselves.
type Pair struct {
	Forward  []int
	Backward []int
}

// Dims returns the dimensionality the pair applies to.
func (p Pair) Dims() int { return len(p.Forward) }

// Generate builds a seeded random permutation of [0, dims) and its inverse.
// The same (dims, seed) always yields the same pair.
func Generate(dims int, seed int64) Pair {
	if dims <= 0 {
		panic("permutation: dims must be positive")
	}
	r := rand.New(rand.NewSource(seed)) //nolint:gosec
	forward := r.Perm(dims)
	backward := make([]int, dims)
	for i, j := range forward {
		backward[j] = i
	}
	return Pair{Forward: forward, Backward: backward}
}

// file is the on-disk YAML layout of a Pair.
type file struct {
	Dimensionality int   `yaml:"dimensionality"`
	Forward        []int `yaml:"forward,flow"`
	Backward       []int `yaml:"backward,flow"`
}

// Save writes the pair to path as YAML, creating parent directories.
func (p Pair) Save(path string) error {
	data, err := yaml.Marshal(file{
		Dimensionality: p.Dims(),
		Forward:        p.Forward,
		Backward:       p.Backward,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal permutation pair: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write permutation pair: %w", err)
	}
	return nil
}

// Load reads a pair written by Save. Table lengths and entry ranges are
// checked; inverse-ness is the writer's responsibility.
func Load(path string) (Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to read permutation pair: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Pair{}, fmt.Errorf("failed to parse permutation pair: %w", err)
	}
	if len(f.Forward) != f.Dimensionality || len(f.Backward) != f.Dimensionality {
		return Pair{}, fmt.Errorf("%w: dimensionality %d, forward %d, backward %d",
			ErrInvalidPair, f.Dimensionality, len(f.Forward), len(f.Backward))
	}
	if err := checkRange("forward", f.Forward); err != nil {
		return Pair{}, err
	}
	if err := checkRange("backward", f.Backward); err != nil {
		return Pair{}, err
	}
	return Pair{Forward: f.Forward, Backward: f.Backward}, nil
}

// checkRange rejects table entries outside [0, len(table)).
func checkRange(name string, table []int) error {
	for i, j := range table {
		if j < 0 || j >= len(table) {
			return fmt.Errorf("%w: %s[%d] = %d is outside [0, %d)", ErrInvalidPair, name, i, j, len(table))
		}
	}
	return nil
}
