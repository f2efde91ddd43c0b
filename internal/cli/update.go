package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCmd(a *app) *cobra.Command {
	var cf contactFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update contact fields",
		Long: `Update changes only the fields given as flags. Pass an empty value to
clear an optional field.

Example:
  rolodex update 0190a1b2-... --phone 555-0199
  rolodex update 0190a1b2-... --company ""`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := cf.patch(cmd)
			if patch.IsEmpty() {
				return userError(errors.New("update: at least one field flag must be provided"))
			}
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			changed, err := s.store.UpdateEntity(cmd.Context(), args[0], patch)
			if err != nil {
				return classify(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), changed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}
