package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/jsonl"
	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/internal/server"
	"github.com/mesh-intelligence/rolodex/pkg/sqlite"
)

const shutdownGrace = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local contact API",
		Long: `Serve runs a SQLite-backed contact API on --addr until interrupted.
The database lives in the data directory (see --data-dir). With --seed, an
empty database is first filled from a JSONL file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(keyServerDataDir))
			if err != nil {
				return sysError(fmt.Errorf("resolve data dir: %w", err))
			}
			contacts, closeFn, err := sqlite.Open(dataDir)
			if err != nil {
				return sysError(fmt.Errorf("open storage: %w", err))
			}
			defer closeFn()

			if seedFile != "" {
				records, skipped, err := jsonl.ReadFile(seedFile)
				if err != nil {
					return userError(fmt.Errorf("read seed file: %w", err))
				}
				n, err := sqlite.Seed(cmd.Context(), contacts, records)
				if err != nil {
					return sysError(err)
				}
				a.logger.Info("seeded contacts", "file", seedFile, "seeded", n, "skipped", skipped)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			h := server.New(contacts, server.Options{
				Token:     a.v.GetString(keyServerToken),
				RateLimit: a.v.GetFloat64(keyServerRate),
				Burst:     a.v.GetInt(keyServerBurst),
				Logger:    a.logger,
				Registry:  reg,
			})

			addr := a.v.GetString(keyServerAddr)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return sysError(fmt.Errorf("listen on %s: %w", addr, err))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("serving contacts", "data_dir", dataDir)
			if err := server.Serve(ctx, ln, h, shutdownGrace, a.logger); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "listen address (default "+defaultAddr+")")
	_ = a.v.BindPFlag(keyServerAddr, cmd.Flags().Lookup("addr"))
	cmd.Flags().StringVar(&seedFile, "seed", "", "JSONL file loaded when the database is empty")
	return cmd
}
