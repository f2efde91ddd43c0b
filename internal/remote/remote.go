// Package remote implements types.ContactCollection on top of the HTTP
// transport. Each method is exactly one transport call.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/mesh-intelligence/rolodex/internal/transport"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// resourcePath is the contact collection on the API.
const resourcePath = "/contact"

var _ types.ContactCollection = (*Client)(nil)

// Client maps contact operations to transport requests. It holds no state
// besides its collaborators.
type Client struct {
	doer    transport.Doer
	encoder *schema.Encoder
}

// New creates a Client that sends its requests through doer.
func New(doer transport.Doer) *Client {
	return &Client{
		doer:    doer,
		encoder: schema.NewEncoder(),
	}
}

// List fetches the collection. Only non-empty filter fields become query
// parameters.
func (c *Client) List(ctx context.Context, filter types.FilterCriteria) ([]types.Contact, error) {
	query, err := c.filterQuery(filter)
	if err != nil {
		return nil, err
	}

	var contacts []types.Contact
	req := transport.Request{Method: http.MethodGet, Path: resourcePath, Query: query}
	if err := c.doer.Do(ctx, req, &contacts); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []types.Contact{}
	}
	return contacts, nil
}

// Get fetches one contact.
func (c *Client) Get(ctx context.Context, id string) (types.Contact, error) {
	if id == "" {
		return types.Contact{}, types.ErrInvalidID
	}

	var contact types.Contact
	req := transport.Request{Method: http.MethodGet, Path: itemPath(id)}
	if err := c.doer.Do(ctx, req, &contact); err != nil {
		return types.Contact{}, fmt.Errorf("get contact %s: %w", id, err)
	}
	return contact, nil
}

// Create posts a new contact and returns the persisted record.
func (c *Client) Create(ctx context.Context, fields types.ContactFields) (types.Contact, error) {
	var contact types.Contact
	req := transport.Request{Method: http.MethodPost, Path: resourcePath, Body: fields}
	if err := c.doer.Do(ctx, req, &contact); err != nil {
		return types.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// Update patches a contact and returns the changed fields.
func (c *Client) Update(ctx context.Context, id string, patch types.ContactPatch) (types.ContactPatch, error) {
	if id == "" {
		return types.ContactPatch{}, types.ErrInvalidID
	}

	var changed types.ContactPatch
	req := transport.Request{Method: http.MethodPatch, Path: itemPath(id), Body: patch}
	if err := c.doer.Do(ctx, req, &changed); err != nil {
		return types.ContactPatch{}, fmt.Errorf("update contact %s: %w", id, err)
	}
	return changed, nil
}

// Delete removes a contact.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	req := transport.Request{Method: http.MethodDelete, Path: itemPath(id)}
	if err := c.doer.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}

// filterQuery encodes the compacted filter. The schema omitempty tags drop
// empty fields, so an all-empty filter yields no query string.
func (c *Client) filterQuery(filter types.FilterCriteria) (url.Values, error) {
	query := url.Values{}
	if err := c.encoder.Encode(filter.Compact(), query); err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return query, nil
}

func itemPath(id string) string {
	return resourcePath + "/" + url.PathEscape(id)
}
