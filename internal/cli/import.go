package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/jsonl"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// importResult summarizes an import run.
type importResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create contacts from a JSONL file",
		Long: `Import creates one contact per line of file. Lines that are not valid
contacts are skipped; records the server rejects are counted as failed.
IDs and creation times in the file are ignored. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var contacts []types.Contact
			var res importResult
			var err error
			if args[0] == "-" {
				contacts, res.Skipped, err = jsonl.Decode(cmd.InOrStdin())
			} else {
				contacts, res.Skipped, err = jsonl.ReadFile(args[0])
			}
			if err != nil {
				return userError(err)
			}

			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.close()

			for _, c := range contacts {
				_, err := s.store.CreateEntity(cmd.Context(), c.Fields())
				var te *types.TransportError
				if errors.As(err, &te) {
					return sysError(fmt.Errorf("import stopped after %d contacts: %w", res.Imported, err))
				}
				if err != nil {
					res.Failed++
					a.logger.Warn("contact rejected", "full_name", c.FullName, "error", err)
					continue
				}
				res.Imported++
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d contacts (skipped %d, failed %d)\n", res.Imported, res.Skipped, res.Failed)
			return nil
		},
	}
}
