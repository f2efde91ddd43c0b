package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printContacts writes one row per contact.
func printContacts(w io.Writer, contacts []types.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(w, "No contacts found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCATEGORY")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.FullName, c.Email, c.Phone, c.Category)
	}
	tw.Flush()
}

// printContact writes every non-empty field of c, one per line.
func printContact(w io.Writer, c types.Contact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"ID", c.ID},
		{"Name", c.FullName},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Company", c.Company},
		{"Job title", c.JobTitle},
		{"Category", c.Category},
		{"Notes", c.Notes},
	}
	for _, r := range rows {
		if r.value != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", r.label, r.value)
		}
	}
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Created:\t%s\n", c.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
