package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// SeedIfEmpty inserts records in one transaction when the table holds no
// contacts, and reports how many were inserted. A non-empty table is left
// alone. Records missing a required field are skipped.
func (ct *ContactsTable) SeedIfEmpty(ctx context.Context, records []types.ContactFields) (int, error) {
	db, err := ct.backend.handle()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting contacts: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("preparing seed insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, r := range records {
		if len(r.Missing()) > 0 {
			continue
		}
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("generating UUID v7: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			id.String(),
			strings.TrimSpace(r.FullName), strings.TrimSpace(r.Email), strings.TrimSpace(r.Phone),
			strings.TrimSpace(r.Company), strings.TrimSpace(r.JobTitle), strings.TrimSpace(r.Notes),
			strings.TrimSpace(r.Category),
			now.Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("seeding %s: %w", r.FullName, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", err)
	}
	return inserted, nil
}
