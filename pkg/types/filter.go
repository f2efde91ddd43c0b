package types

import "strings"

// SortOrder orders the collection by full name on the server.
type SortOrder string

// Sort orders accepted by the contact API.
const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Valid reports whether o is a known sort order. The empty order is valid
// and means "server default".
func (o SortOrder) Valid() bool {
	switch o {
	case "", SortAscending, SortDescending:
		return true
	}
	return false
}

// ParseSortOrder accepts asc/desc and the long forms ascending/descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	}
	return "", ErrInvalidSortOrder
}

// FilterCriteria holds the active query parameters. The schema tags drive the
// query string encoding; empty fields are omitted, never sent as "".
type FilterCriteria struct {
	Search    string    `json:"search,omitempty" schema:"search,omitempty"`
	SortOrder SortOrder `json:"sortOrder,omitempty" schema:"sortOrder,omitempty"`
	Category  string    `json:"category,omitempty" schema:"category,omitempty"`
}

// DefaultFilter is the filter a fresh store starts with.
func DefaultFilter() FilterCriteria {
	return FilterCriteria{SortOrder: SortDescending}
}

// Compact returns a copy with blank fields cleared, so that whitespace-only
// values are omitted the same way empty ones are.
func (f FilterCriteria) Compact() FilterCriteria {
	if strings.TrimSpace(f.Search) == "" {
		f.Search = ""
	}
	if strings.TrimSpace(string(f.SortOrder)) == "" {
		f.SortOrder = ""
	}
	if strings.TrimSpace(f.Category) == "" {
		f.Category = ""
	}
	return f
}

// FilterPatch changes some fields of a FilterCriteria. A nil field is left
// as it is; a pointer to "" clears the field.
type FilterPatch struct {
	Search    *string
	SortOrder *SortOrder
	Category  *string
}

// Merge applies p to f field by field.
func (f FilterCriteria) Merge(p FilterPatch) FilterCriteria {
	if p.Search != nil {
		f.Search = *p.Search
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
	return f
}
