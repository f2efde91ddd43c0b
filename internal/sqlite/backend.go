// Package sqlite implements the storage behind the reference contact server.
// A Backend owns one SQLite file in a data directory; its ContactsTable
// serves the same collection operations the HTTP API exposes.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/rolodex/internal/paths"
)

// Backend lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("backend already attached")
	ErrDetached        = errors.New("backend detached")
)

// Backend opens and closes the contact database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	dataDir  string
	db       *sql.DB
	contacts *ContactsTable
}

// NewBackend creates a backend. It is not attached; call Attach.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (or creates) contacts.db under dataDir and applies the
// schema. Existing data is kept.
func (b *Backend) Attach(dataDir string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", paths.DatabaseFile(dataDir))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers; SQLite would otherwise return
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}

	b.db = db
	b.dataDir = dataDir
	b.contacts = &ContactsTable{backend: b}
	b.attached = true
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	b.contacts = nil
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	return nil
}

// DataDir returns the directory passed to Attach.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dataDir
}

// Contacts returns the contacts table.
// Returns ErrDetached if the backend is not attached.
func (b *Backend) Contacts() (*ContactsTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, ErrDetached
	}
	return b.contacts, nil
}

// handle returns the open database, or ErrDetached.
func (b *Backend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, ErrDetached
	}
	return b.db, nil
}
