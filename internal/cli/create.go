package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateCmd(a *app) *cobra.Command {
	var cf contactFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a contact",
		Long: `Create adds a contact. --full-name, --email and --phone are required.

Example:
  rolodex create --full-name "Ada Lovelace" --email ada@example.com --phone 555-0100 --category work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := cf.fields()
			if err != nil {
				return err
			}
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			contact, err := s.store.CreateEntity(cmd.Context(), fields)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), contact)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", contact.ID)
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}
