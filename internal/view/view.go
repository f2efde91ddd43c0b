// Package view derives a display list from a contact collection. It is pure:
// nothing here touches the store or the network, and inputs are never
// mutated.
package view

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Query narrows and orders a collection. Empty fields do not constrain.
type Query struct {
	Search    string
	Category  string
	SortOrder types.SortOrder
}

// FromFilter builds a Query from the store's filter criteria.
func FromFilter(f types.FilterCriteria) Query {
	return Query{Search: f.Search, Category: f.Category, SortOrder: f.SortOrder}
}

// Project returns the contacts matching q, ordered by full name. Search is
// a case-insensitive substring match on full name, email and phone; Category
// must match exactly. Ties keep their input order.
func Project(contacts []types.Contact, q Query) []types.Contact {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]types.Contact, 0, len(contacts))
	for _, c := range contacts {
		if category != "" && c.Category != category {
			continue
		}
		if needle != "" && !matches(c, needle) {
			continue
		}
		out = append(out, c)
	}

	if q.SortOrder == "" {
		return out
	}
	desc := q.SortOrder == types.SortDescending
	slices.SortStableFunc(out, func(a, b types.Contact) int {
		n := strings.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
		if desc {
			return -n
		}
		return n
	})
	return out
}

func matches(c types.Contact, needle string) bool {
	for _, field := range []string{c.FullName, c.Email, c.Phone} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Index maps each contact ID to its position in contacts. When an ID repeats,
// the first position wins.
func Index(contacts []types.Contact) map[string]int {
	idx := make(map[string]int, len(contacts))
	for i, c := range contacts {
		if _, ok := idx[c.ID]; !ok {
			idx[c.ID] = i
		}
	}
	return idx
}
