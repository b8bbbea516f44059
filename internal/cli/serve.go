package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackscroll/pkg/server"
	"github.com/matzehuels/stackscroll/pkg/session"
)

// serveCommand creates the serve command for the HTTP preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview server",
		Long: `Run the HTTP preview server.

The server holds scroll sessions in memory. Each session owns a deck and an
engine; clients scroll it and fetch frames as JSON or SVG. POST /simulate
runs a one-shot simulation through the same cache as the simulate command.

Routes:
  GET    /healthz
  POST   /simulate
  GET    /sessions
  POST   /sessions
  GET    /sessions/{id}
  DELETE /sessions/{id}
  POST   /sessions/{id}/scroll
  POST   /sessions/{id}/layout
  GET    /sessions/{id}/frame.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(cfg,
				server.WithRunner(runner),
				server.WithStore(session.NewMemoryStore(cfg.Server.MaxSessions)),
				server.WithLogger(logger),
			)

			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("Sessions: up to %d, idle timeout %s", cfg.Server.MaxSessions, cfg.Server.SessionTTL.Duration)
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of /simulate results")

	return cmd
}
