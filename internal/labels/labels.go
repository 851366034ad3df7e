// Package labels generates deterministic random index vectors ("labels")
// for tokens within the rivet service.
package labels

import "github.com/localrivet/rivet/internal/riv"

const (
	// DefaultDimensionality is the size of generated label vectors.
	DefaultDimensionality = 8000

	// DefaultK is the number of nonzero entries in a generated label.
	DefaultK = 8
)

// Labeler defines the interface for turning tokens into label vectors.
type Labeler interface {
	// Label returns the label vector for word.
	Label(word string) (*riv.RIV, error)

	// Initialize validates the labeler's configuration.
	Initialize() error
}
