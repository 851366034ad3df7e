package lexicon

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/localrivet/rivet/internal/riv"
)

const badgerPrefix = "riv:"

// BadgerStore is an implementation of Store backed by BadgerDB. An empty
// directory opens an in-memory database.
type BadgerStore struct {
	mu sync.RWMutex
	db *badger.DB
}

// NewBadgerStore creates a new BadgerStore instance.
func NewBadgerStore() *BadgerStore {
	return &BadgerStore{}
}

func badgerKey(key string) []byte {
	return []byte(badgerPrefix + key)
}

// Initialize opens the database in dir.
func (s *BadgerStore) Initialize(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	// Use a quiet logger
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	s.db = db
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *BadgerStore) checkOpen() error {
	if s.db == nil {
		return fmt.Errorf("badger store is not initialized")
	}
	return nil
}

// Put stores v under key.
func (s *BadgerStore) Put(key string, v *riv.RIV) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	data, err := v.MarshalText()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key), data)
	})
}

// Get returns the vector stored under key.
func (s *BadgerStore) Get(key string) (*riv.RIV, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var v *riv.RIV
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, err := riv.Parse(string(val))
			if err != nil {
				return fmt.Errorf("stored vector %s is corrupt: %w", key, err)
			}
			v = parsed
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes key.
func (s *BadgerStore) Delete(key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
}

// Clear removes every vector. The prefix is dropped as a whole, so the
// number of keys is not limited by the transaction size.
func (s *BadgerStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n, err := s.count()
	if err != nil {
		return 0, err
	}
	if err := s.db.DropPrefix([]byte(badgerPrefix)); err != nil {
		return 0, fmt.Errorf("failed to clear vectors: %w", err)
	}
	return n, nil
}

// Count returns the number of stored vectors.
func (s *BadgerStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.count()
}

func (s *BadgerStore) count() (int, error) {
	n := 0
	prefix := []byte(badgerPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}
