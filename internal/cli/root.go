// Package cli implements the rolodex command-line interface. Every command
// that talks to the contact API runs its action through a fresh store and
// renders the resulting snapshot.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/rolodex"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	baseURL   string
	token     string
	logLevel  string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	v         *viper.Viper
	configDir string
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "rolodex" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:     "rolodex",
		Short:   "Manage contacts held by a remote contact API",
		Long:    "Rolodex lists, inspects, creates, updates and deletes contacts through\na remote CRUD API, and can run a local SQLite-backed API for development.",
		Version: rolodex.Version,
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/rolodex)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory for serve and init (default: $(CWD)/.rolodex-db)")
	pf.StringVar(&a.flags.baseURL, "base-url", "", "contact API base URL")
	pf.StringVar(&a.flags.token, "token", "", "bearer token for the contact API")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	_ = a.v.BindPFlag(keyBaseURL, pf.Lookup("base-url"))
	_ = a.v.BindPFlag(keyToken, pf.Lookup("token"))
	_ = a.v.BindPFlag(keyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup resolves the config directory, loads config.yaml and builds the
// logger. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	if err := loadConfig(a.v, configDir); err != nil {
		return userError(err)
	}
	a.logger = newLogger(a.v, cmd.ErrOrStderr())
	return nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

// run executes root with args and returns the process exit code.
func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "rolodex:", err)

	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
