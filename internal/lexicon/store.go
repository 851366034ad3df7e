// Package lexicon persists label vectors and saved vectors for the rivet
// service behind a small key/value Store interface.
package lexicon

import (
	"errors"
	"fmt"

	"github.com/localrivet/rivet/internal/riv"
)

// ErrNotFound is returned by Store.Get when no vector is stored under a key.
var ErrNotFound = errors.New("lexicon: not found")

// Supported store backends
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Store defines the interface for storing and retrieving vectors by key.
type Store interface {
	// Initialize opens the store at path.
	Initialize(path string) error

	// Close closes the store and releases any resources.
	Close() error

	// Put stores v under key, replacing any previous vector.
	Put(key string, v *riv.RIV) error

	// Get returns the vector stored under key or ErrNotFound.
	Get(key string) (*riv.RIV, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Clear removes every vector and reports how many were removed.
	Clear() (int, error)

	// Count returns the number of stored vectors.
	Count() (int, error)
}

// NewStore returns an uninitialized store for the named backend.
func NewStore(backend string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return NewSQLiteStore(), nil
	case BackendBadger:
		return NewBadgerStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
