package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cxkit/internal/config"
	"cxkit/internal/frontend"
	"cxkit/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fulfillment webhook and the demo front end",
	Long: `Starts an HTTP server exposing:

  POST /webhook   the fulfillment webhook the sample agent calls
  GET  /          a page describing this deployment
  GET  /health    a liveness probe
  GET  /metrics   Prometheus metrics

The listen address defaults to :8080, or :$PORT when PORT is set. The server
shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadedConfig
	overrideString(cmd.Flags().Changed("addr"), &cfg.Serve.Addr, serveAddr)

	meta := deploymentMetadata(cfg, time.Now(), os.Environ())
	fe, err := frontend.New(meta)
	if err != nil {
		return err
	}
	return serveUntilSignal(cmd.Context(), server.Options{Addr: cfg.Serve.Addr, Frontend: fe})
}

// deploymentMetadata describes a serve process that has no agent of its own.
func deploymentMetadata(cfg config.Config, startedAt time.Time, environ []string) frontend.Metadata {
	return frontend.Metadata{
		ProjectID:        cfg.ProjectID,
		Location:         cfg.Location,
		AgentDisplayName: cfg.Provision.AgentDisplayName,
		WebhookURI:       cfg.Provision.WebhookURI,
		StartedAt:        startedAt,
		Environment:      frontend.DeploymentEnv(environ),
	}
}

// serveUntilSignal runs the server until SIGINT or SIGTERM.
func serveUntilSignal(ctx context.Context, opts server.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(opts).Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", config.DefaultServeAddr, "Listen address (env: PORT)")
}
