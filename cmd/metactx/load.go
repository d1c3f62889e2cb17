package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/metactx/pkg/audit"
	"github.com/ajitpratap0/metactx/pkg/connectorctx"
	"github.com/ajitpratap0/metactx/pkg/loader"
	"github.com/ajitpratap0/metactx/pkg/logger"
	"github.com/ajitpratap0/metactx/pkg/metadata"
	"github.com/ajitpratap0/metactx/pkg/observability"
	"github.com/ajitpratap0/metactx/pkg/report"
)

func (a *app) loadCommand() *cobra.Command {
	var file string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a YAML catalog through the connector context",
		Long: `Create or update the elements of a YAML catalog and link them by
qualifiedName. The load is recorded in one integration report, published when
it completes. Element events go to the log and, when events are enabled, to
Kafka.

Example:
  metactx load --file catalog.yaml --server https://metadata.example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close(context.Background())

			catalog, err := loader.ReadFile(file)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, serverName, err := a.openClient(ctx)
			if err != nil {
				return err
			}
			publisher, err := a.openPublisher()
			if err != nil {
				return err
			}

			cc := a.cfg.Context
			auditLog := audit.New(cc.ConnectorName, a.log)
			reportOpts := []report.Option{report.WithPublisher(publisher), report.WithAudit(auditLog)}
			ctxOpts := []connectorctx.Option{
				connectorctx.WithAudit(auditLog),
				connectorctx.WithTracer(observability.NewClientTracer(cc.ConnectorName)),
			}
			if a.metrics != nil {
				reportOpts = append(reportOpts, report.WithMetrics(a.metrics))
				ctxOpts = append(ctxOpts, connectorctx.WithMetrics(a.metrics))
			}

			writer := report.NewWriter(client, report.Config{
				ServerName:    serverName,
				ConnectorID:   cc.ConnectorName,
				ConnectorName: cc.ConnectorName,
				ConnectorGUID: cc.ConnectorGUID,
				UserID:        cc.UserID,
				Source: metadata.MetadataSourceOptions{
					ExternalSourceGUID: cc.ExternalSourceGUID,
					ExternalSourceName: cc.ExternalSourceName,
				},
			}, a.log, reportOpts...)
			ctxOpts = append(ctxOpts, connectorctx.WithReportWriter(writer))

			connector, err := connectorctx.New(client, cc, a.log, ctxOpts...)
			if err != nil {
				return err
			}

			ctx = logger.ContextWithConnector(ctx, cc.ConnectorName)
			ctx = logger.ContextWithUser(ctx, cc.UserID)
			ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
			logger.FromContext(ctx, a.log).Info("loading catalog",
				zap.String("file", file), zap.String("server", serverName))
			res, err := loader.New(connector, writer, a.log).Load(ctx, catalog)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", file, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created: %d\n", res.Created)
			fmt.Fprintf(out, "updated: %d\n", res.Updated)
			fmt.Fprintf(out, "linked:  %d\n", res.Linked)
			fmt.Fprintf(out, "report:  %s\n", res.ReportGUID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the catalog YAML file (required)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Load timeout")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
