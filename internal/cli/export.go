package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/jsonl"
)

func newExportCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write contacts to a JSONL file",
		Long: `Export writes the contacts matching the filter flags to file, one JSON
object per line. Use "-" to write to standard output.

Example:
  rolodex export contacts.jsonl
  rolodex export --category work - | jq .email`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			contacts, err := a.fetch(cmd, &ff)
			if err != nil {
				return err
			}

			if args[0] == "-" {
				if err := jsonl.Encode(cmd.OutOrStdout(), contacts); err != nil {
					return sysError(err)
				}
				return nil
			}
			if err := jsonl.WriteFile(args[0], contacts); err != nil {
				return sysError(err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{"file": args[0], "exported": len(contacts)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d contacts to %s\n", len(contacts), args[0])
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}
