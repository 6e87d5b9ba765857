package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/budgettree/internal/config"
	"github.com/rshade/budgettree/internal/logging"
	"github.com/rshade/budgettree/internal/server"
)

// shutdownTimeout bounds graceful shutdown of the API server.
const shutdownTimeout = 10 * time.Second

// newServeCmd creates the "serve" command running the JSON API.
func newServeCmd() *cobra.Command {
	var (
		addr     string
		dataDir  string
		allowAll bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tree as a JSON API for web charts",
		Long: `Serve entries, pie segments, tree nodes, breadcrumbs and search results
over HTTP. With --data a local copy of the data tree is also served under
/data/, so a browser front end and the API can share one origin.`,
		Example: `  # Serve on the configured address
  budgettree serve

  # Serve a local checkout and host it under /data/
  budgettree serve --source ./haushalt --data ./haushalt --addr :9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := currentServerConfig(cmd, addr, allowAll)
			return runServe(cmd, cfg, dataDir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dataDir, "data", "", "local data directory to serve under /data/")
	cmd.Flags().BoolVar(&allowAll, "allow-all-origins", false, "allow cross-origin requests from any origin")

	return cmd
}

// currentServerConfig merges the serve flags over the config file.
func currentServerConfig(cmd *cobra.Command, addr string, allowAll bool) server.Config {
	s := config.GetGlobalConfig()
	cfg := server.Config{
		Addr:        s.Server.Addr,
		AllowAll:    s.Server.AllowAllOrigins,
		MaxSegments: s.Output.MaxSegments,
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if cmd.Flags().Changed("allow-all-origins") {
		cfg.AllowAll = allowAll
	}
	return cfg
}

func runServe(cmd *cobra.Command, cfg server.Config, dataDir string) error {
	cfg.DataDir = dataDir

	s, err := openSession()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, s.loader, logging.ComponentLogger(*logging.FromContext(ctx), "server"))

	go func() {
		<-ctx.Done()
		cmd.PrintErrln("\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("server shutdown failed")
		}
	}()

	cmd.PrintErrf("budgettree serving %s on %s\n", s.cfg.Source.Base, srv.Addr())
	if dataDir != "" {
		cmd.PrintErrf("  Data: %s under /data/\n", dataDir)
	}
	return srv.Start()
}
