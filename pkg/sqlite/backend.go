// Package sqlite exposes the SQLite contact storage used by the reference
// server, for programs that embed it.
//
// Example:
//
//	contacts, closeFn, err := sqlite.Open(".rolodex-db")
//	if err != nil {
//	    return err
//	}
//	defer closeFn()
//	c, err := contacts.Create(ctx, types.ContactFields{FullName: "Ada", Email: "ada@example.com", Phone: "555"})
package sqlite

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/rolodex/internal/sqlite"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Open attaches a backend on dataDir and returns its contacts collection
// together with the function that detaches it.
func Open(dataDir string) (types.ContactCollection, func() error, error) {
	b := sqlite.NewBackend()
	if err := b.Attach(dataDir); err != nil {
		return nil, nil, err
	}
	contacts, err := b.Contacts()
	if err != nil {
		_ = b.Detach()
		return nil, nil, err
	}
	return contacts, b.Detach, nil
}

// Seed fills an empty collection returned by Open with records and reports
// how many were stored. A collection that already holds contacts is left
// unchanged.
func Seed(ctx context.Context, contacts types.ContactCollection, records []types.Contact) (int, error) {
	table, ok := contacts.(*sqlite.ContactsTable)
	if !ok {
		return 0, errors.New("seed: collection is not SQLite-backed")
	}
	fields := make([]types.ContactFields, len(records))
	for i, r := range records {
		fields[i] = r.Fields()
	}
	return table.SeedIfEmpty(ctx, fields)
}
