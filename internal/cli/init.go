package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml and create the local database",
		Long: `Init creates the configuration directory with a default config.yaml
(an existing file is left untouched) and initializes the SQLite database
used by serve. Running it again is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := paths.EnsureDir(a.configDir); err != nil {
				return sysError(err)
			}
			wrote, err := writeConfigIfMissing(a.configDir)
			if err != nil {
				return sysError(err)
			}

			dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(keyServerDataDir))
			if err != nil {
				return sysError(fmt.Errorf("resolve data dir: %w", err))
			}
			_, closeFn, err := sqlite.Open(dataDir)
			if err != nil {
				return sysError(fmt.Errorf("initialize storage: %w", err))
			}
			if err := closeFn(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			out := cmd.OutOrStdout()
			if wrote {
				fmt.Fprintf(out, "Wrote %s\n", paths.ConfigFile(a.configDir))
			}
			fmt.Fprintf(out, "Rolodex initialized (data: %s)\n", dataDir)
			return nil
		},
	}
}
