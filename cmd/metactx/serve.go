package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/metactx/pkg/auth"
	"github.com/ajitpratap0/metactx/pkg/server"
)

func (a *app) serveCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the metadata repository over HTTP",
		Long: `Serve the configured metadata repository under
/servers/{server}/users/{userId}/ until SIGINT or SIGTERM. A memory backend
with a snapshot path is restored on start and saved on shutdown.

Example:
  metactx serve --config metactx.yaml --address :9443`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if address != "" {
				a.cfg.Server.Address = address
			}
			defer a.close(context.Background())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := a.openRepository(ctx)
			if err != nil {
				return err
			}

			opts := []server.Option{server.WithVersion(version)}
			if a.metrics != nil {
				opts = append(opts, server.WithMetrics(a.metrics, prometheus.DefaultGatherer))
			}
			if a.cfg.Server.JWTSecret != "" {
				opts = append(opts, server.WithAuth(auth.NewManager(a.cfg.Server.JWTSecret, "")))
			}
			srv, err := server.New(repo, a.cfg.Server, a.log, opts...)
			if err != nil {
				return err
			}

			a.log.Info("starting metadata server",
				zap.String("server", a.cfg.Server.Name),
				zap.String("address", a.cfg.Server.Address),
				zap.String("backend", a.cfg.Storage.Backend),
				zap.Bool("auth", a.cfg.Server.JWTSecret != ""))
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Listen address (overrides server.address)")
	return cmd
}
