package types

import "context"

// ContactCollection maps the domain operations onto a remote contact
// resource. Every call reaches the backend exactly once; implementations do
// not retry or cache.
type ContactCollection interface {
	// List returns the contacts matching filter. Empty filter fields are not
	// sent to the backend.
	List(ctx context.Context, filter FilterCriteria) ([]Contact, error)

	// Get returns the contact with the given ID.
	// Returns an error matching ErrNotFound if the backend has no such contact.
	Get(ctx context.Context, id string) (Contact, error)

	// Create persists a new contact and returns the full stored record,
	// including the server-assigned ID and CreatedAt.
	Create(ctx context.Context, fields ContactFields) (Contact, error)

	// Update applies a partial update and returns the fields the backend
	// changed. Callers merge the result into their local record.
	Update(ctx context.Context, id string, patch ContactPatch) (ContactPatch, error)

	// Delete removes the contact with the given ID.
	// Returns an error matching ErrNotFound if it is already absent.
	Delete(ctx context.Context, id string) error
}
