package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// contactFlags are the per-field flags shared by create and update.
type contactFlags struct {
	fullName, email, phone, company, jobTitle, notes, category string
}

// flagNames maps JSON field names to flag names for error messages.
var flagNames = map[string]string{
	"fullName": "--full-name",
	"email":    "--email",
	"phone":    "--phone",
}

func (f *contactFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.fullName, "full-name", "", "full name")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.company, "company", "", "company")
	fs.StringVar(&f.jobTitle, "job-title", "", "job title")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.category, "category", "", "category, e.g. work or friends")
}

// fields returns the create payload, or a user error naming the missing
// required flags.
func (f *contactFlags) fields() (types.ContactFields, error) {
	fields := types.ContactFields{
		FullName: f.fullName,
		Email:    f.email,
		Phone:    f.phone,
		Company:  f.company,
		JobTitle: f.jobTitle,
		Notes:    f.notes,
		Category: f.category,
	}
	if missing := fields.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, m := range missing {
			names[i] = flagNames[m]
		}
		return types.ContactFields{}, userError(fmt.Errorf("missing required flags: %s", strings.Join(names, ", ")))
	}
	return fields, nil
}

// patch returns a patch holding exactly the flags set on the command line.
func (f *contactFlags) patch(cmd *cobra.Command) types.ContactPatch {
	var p types.ContactPatch
	set := func(name string, value string, dst **string) {
		if cmd.Flags().Changed(name) {
			v := value
			*dst = &v
		}
	}
	set("full-name", f.fullName, &p.FullName)
	set("email", f.email, &p.Email)
	set("phone", f.phone, &p.Phone)
	set("company", f.company, &p.Company)
	set("job-title", f.jobTitle, &p.JobTitle)
	set("notes", f.notes, &p.Notes)
	set("category", f.category, &p.Category)
	return p
}

// filterFlags narrow list and export.
type filterFlags struct {
	search, sort, category string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.search, "search", "", "match name, email or phone")
	fs.StringVar(&f.sort, "sort", "", "sort by name: asc or desc")
	fs.StringVar(&f.category, "category", "", "only contacts in this category")
}

// patch returns the filter changes requested on the command line.
func (f *filterFlags) patch(cmd *cobra.Command) (types.FilterPatch, error) {
	var p types.FilterPatch
	if cmd.Flags().Changed("search") {
		p.Search = types.String(f.search)
	}
	if cmd.Flags().Changed("category") {
		p.Category = types.String(f.category)
	}
	if cmd.Flags().Changed("sort") {
		order, err := types.ParseSortOrder(f.sort)
		if err != nil {
			return types.FilterPatch{}, userError(fmt.Errorf("--sort %q: %w", f.sort, err))
		}
		p.SortOrder = &order
	}
	return p, nil
}
