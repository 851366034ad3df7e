package lexicon

import (
	"fmt"
	"sync"
	"time"

	"crawshaw.io/sqlite"

	"github.com/localrivet/rivet/internal/riv"
)

// SQLiteStore is an implementation of Store that uses SQLite. Vectors are
// kept in their text form.
type SQLiteStore struct {
	mu     sync.Mutex
	conn   *sqlite.Conn
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Initialize initializes the store with the given database path.
func (s *SQLiteStore) Initialize(dbPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dbPath = dbPath

	conn, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	s.conn = conn

	if err := s.exec(`
	CREATE TABLE IF NOT EXISTS vectors (
		key TEXT PRIMARY KEY,
		riv TEXT NOT NULL,
		dimensionality INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`); err != nil {
		s.conn.Close()
		s.conn = nil
		return fmt.Errorf("failed to create table: %w", err)
	}

	return nil
}

// exec runs a statement that takes no parameters and returns no rows.
func (s *SQLiteStore) exec(query string) error {
	stmt, err := s.conn.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}

// Close closes the store and releases any resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) checkOpen() error {
	if s.conn == nil {
		return fmt.Errorf("sqlite store is not initialized")
	}
	return nil
}

// Put stores v under key.
func (s *SQLiteStore) Put(key string, v *riv.RIV) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`
	INSERT OR REPLACE INTO vectors (key, riv, dimensionality, updated_at)
	VALUES (?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Reset()

	// Bind parameters - indices in sqlite are 1-based
	stmt.BindText(1, key)
	stmt.BindText(2, v.String())
	stmt.BindInt64(3, int64(v.Dims()))
	stmt.BindInt64(4, time.Now().Unix())

	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to insert vector %s: %w", key, err)
	}
	return nil
}

// Get returns the vector stored under key.
func (s *SQLiteStore) Get(key string) (*riv.RIV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	stmt, err := s.conn.Prepare(`SELECT riv FROM vectors WHERE key = ?;`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, key)
	hasRow, err := stmt.Step()
	if err != nil {
		return nil, fmt.Errorf("failed to read vector %s: %w", key, err)
	}
	if !hasRow {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	// Column indices are 0-based
	v, err := riv.Parse(stmt.ColumnText(0))
	if err != nil {
		return nil, fmt.Errorf("stored vector %s is corrupt: %w", key, err)
	}
	return v, nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	stmt, err := s.conn.Prepare(`DELETE FROM vectors WHERE key = ?;`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	defer stmt.Reset()

	stmt.BindText(1, key)
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("failed to delete vector %s: %w", key, err)
	}
	return nil
}

// Clear removes every vector.
func (s *SQLiteStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n, err := s.count()
	if err != nil {
		return 0, err
	}
	if err := s.exec(`DELETE FROM vectors;`); err != nil {
		return 0, fmt.Errorf("failed to clear vectors: %w", err)
	}
	return n, nil
}

// Count returns the number of stored vectors.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return s.count()
}

func (s *SQLiteStore) count() (int, error) {
	stmt, err := s.conn.Prepare(`SELECT COUNT(*) FROM vectors;`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare count statement: %w", err)
	}
	defer stmt.Reset()

	if _, err := stmt.Step(); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return int(stmt.ColumnInt64(0)), nil
}
