package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/view"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		Long: `List fetches the contact collection, optionally narrowed by a search term
and a category, and prints it sorted by name.

Example:
  rolodex list
  rolodex list --search ada --sort asc
  rolodex list --category work --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := a.fetch(cmd, &ff)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), contacts)
			}
			printContacts(cmd.OutOrStdout(), contacts)
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

// fetch loads the collection for ff and returns it in display order.
func (a *app) fetch(cmd *cobra.Command, ff *filterFlags) ([]types.Contact, error) {
	patch, err := ff.patch(cmd)
	if err != nil {
		return nil, err
	}
	s, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer s.close()

	s.store.SetFilter(patch)
	s.store.FetchCollection(cmd.Context(), nil)

	snap := s.store.Snapshot()
	if snap.Status == types.StatusError {
		return nil, failure(snap)
	}
	return view.Project(snap.Collection, view.FromFilter(snap.Filter)), nil
}
