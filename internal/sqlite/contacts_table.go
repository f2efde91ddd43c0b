package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

var _ types.ContactCollection = (*ContactsTable)(nil)

// ContactsTable stores contacts. Text fields are trimmed on write.
type ContactsTable struct {
	backend *Backend
}

const contactColumns = "contact_id, full_name, email, phone, company, job_title, notes, category, created_at"

// Get returns the contact with the given ID.
// Returns ErrInvalidID for an empty id and ErrNotFound when no row matches.
func (ct *ContactsTable) Get(ctx context.Context, id string) (types.Contact, error) {
	if id == "" {
		return types.Contact{}, types.ErrInvalidID
	}
	db, err := ct.backend.handle()
	if err != nil {
		return types.Contact{}, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE contact_id = ?", id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Contact{}, types.ErrNotFound
	}
	if err != nil {
		return types.Contact{}, fmt.Errorf("getting contact %s: %w", id, err)
	}
	return c, nil
}

// Create stores a new contact with a UUID v7 and the current UTC time and
// returns the stored record.
// Returns ErrInvalidContact when a required field is blank.
func (ct *ContactsTable) Create(ctx context.Context, fields types.ContactFields) (types.Contact, error) {
	if missing := fields.Missing(); len(missing) > 0 {
		return types.Contact{}, fmt.Errorf("%w: missing %s", types.ErrInvalidContact, strings.Join(missing, ", "))
	}
	db, err := ct.backend.handle()
	if err != nil {
		return types.Contact{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Contact{}, fmt.Errorf("generating UUID v7: %w", err)
	}
	c := types.Contact{
		ID:        id.String(),
		FullName:  strings.TrimSpace(fields.FullName),
		Email:     strings.TrimSpace(fields.Email),
		Phone:     strings.TrimSpace(fields.Phone),
		Company:   strings.TrimSpace(fields.Company),
		JobTitle:  strings.TrimSpace(fields.JobTitle),
		Notes:     strings.TrimSpace(fields.Notes),
		Category:  strings.TrimSpace(fields.Category),
		CreatedAt: time.Now().UTC(),
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.FullName, c.Email, c.Phone, c.Company, c.JobTitle, c.Notes, c.Category,
		c.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.Contact{}, fmt.Errorf("inserting contact: %w", err)
	}
	return c, nil
}

// Update applies patch to the contact and returns the fields as stored.
// Returns ErrInvalidContact for an empty patch or a blank required field,
// ErrNotFound when no row matches.
func (ct *ContactsTable) Update(ctx context.Context, id string, patch types.ContactPatch) (types.ContactPatch, error) {
	if id == "" {
		return types.ContactPatch{}, types.ErrInvalidID
	}
	stored, cols, args, err := patchColumns(patch)
	if err != nil {
		return types.ContactPatch{}, err
	}
	db, err := ct.backend.handle()
	if err != nil {
		return types.ContactPatch{}, err
	}

	query := "UPDATE contacts SET " + strings.Join(cols, ", ") + " WHERE contact_id = ?"
	res, err := db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return types.ContactPatch{}, fmt.Errorf("updating contact %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.ContactPatch{}, fmt.Errorf("updating contact %s: %w", id, err)
	}
	if n == 0 {
		return types.ContactPatch{}, types.ErrNotFound
	}
	return stored, nil
}

// Delete removes the contact.
// Returns ErrInvalidID for an empty id and ErrNotFound when no row matches.
func (ct *ContactsTable) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := ct.backend.handle()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, "DELETE FROM contacts WHERE contact_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting contact %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting contact %s: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// List returns the contacts matching filter. Search matches a substring of
// full name, email or phone, ignoring ASCII case; Category must match
// exactly. Results are ordered by full name, descending unless the filter
// asks for ascending.
func (ct *ContactsTable) List(ctx context.Context, filter types.FilterCriteria) ([]types.Contact, error) {
	filter = filter.Compact()
	order := "DESC"
	switch filter.SortOrder {
	case types.SortAscending:
		order = "ASC"
	case types.SortDescending, "":
	default:
		return nil, types.ErrInvalidSortOrder
	}
	db, err := ct.backend.handle()
	if err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.TrimSpace(filter.Search)) + "%"
		where = append(where, `(full_name LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, strings.TrimSpace(filter.Category))
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY full_name COLLATE NOCASE " + order + ", created_at " + order

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contacts: %w", err)
	}
	return contacts, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (types.Contact, error) {
	var c types.Contact
	var createdAt string
	if err := s.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Company, &c.JobTitle, &c.Notes, &c.Category, &createdAt); err != nil {
		return types.Contact{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.Contact{}, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	c.CreatedAt = t
	return c, nil
}

// patchColumns trims the patch values and returns them as stored, with the
// matching SET clauses and arguments in a fixed column order.
func patchColumns(p types.ContactPatch) (types.ContactPatch, []string, []any, error) {
	if p.IsEmpty() {
		return types.ContactPatch{}, nil, nil, fmt.Errorf("%w: nothing to update", types.ErrInvalidContact)
	}

	var stored types.ContactPatch
	fields := []struct {
		column   string
		name     string
		required bool
		src      *string
		dst      **string
	}{
		{"full_name", "fullName", true, p.FullName, &stored.FullName},
		{"email", "email", true, p.Email, &stored.Email},
		{"phone", "phone", true, p.Phone, &stored.Phone},
		{"company", "company", false, p.Company, &stored.Company},
		{"job_title", "jobTitle", false, p.JobTitle, &stored.JobTitle},
		{"notes", "notes", false, p.Notes, &stored.Notes},
		{"category", "category", false, p.Category, &stored.Category},
	}

	var cols []string
	var args []any
	for _, f := range fields {
		if f.src == nil {
			continue
		}
		v := strings.TrimSpace(*f.src)
		if f.required && v == "" {
			return types.ContactPatch{}, nil, nil, fmt.Errorf("%w: %s cannot be blank", types.ErrInvalidContact, f.name)
		}
		*f.dst = &v
		cols = append(cols, f.column+" = ?")
		args = append(args, v)
	}
	return stored, cols, args, nil
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
