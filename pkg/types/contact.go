package types

import (
	"strings"
	"time"
)

// Contact is the managed entity. ID and CreatedAt are assigned by the server
// and never change after creation.
type Contact struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company,omitempty"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Fields returns the user-editable fields of c.
func (c Contact) Fields() ContactFields {
	return ContactFields{
		FullName: c.FullName,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		JobTitle: c.JobTitle,
		Notes:    c.Notes,
		Category: c.Category,
	}
}

// ContactFields is the payload of a create call. The server fills in ID and
// CreatedAt.
type ContactFields struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Category string `json:"category,omitempty"`
}

// Missing returns the JSON names of required fields that are blank.
func (f ContactFields) Missing() []string {
	var missing []string
	if strings.TrimSpace(f.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(f.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(f.Phone) == "" {
		missing = append(missing, "phone")
	}
	return missing
}

// ContactPatch is a partial update. A nil field is not part of the patch.
// The same shape carries the server's answer to an update: only the fields
// the server changed.
type ContactPatch struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Company  *string `json:"company,omitempty"`
	JobTitle *string `json:"jobTitle,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Category *string `json:"category,omitempty"`
}

// IsEmpty reports whether the patch sets no field.
func (p ContactPatch) IsEmpty() bool {
	return p.FullName == nil && p.Email == nil && p.Phone == nil &&
		p.Company == nil && p.JobTitle == nil && p.Notes == nil && p.Category == nil
}

// Apply returns c with every non-nil patch field merged in. ID and CreatedAt
// are never touched.
func (p ContactPatch) Apply(c Contact) Contact {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.FullName, p.FullName)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.Company, p.Company)
	set(&c.JobTitle, p.JobTitle)
	set(&c.Notes, p.Notes)
	set(&c.Category, p.Category)
	return c
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string {
	return &s
}
