package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cxkit/internal/cli"
	"cxkit/internal/config"
	"cxkit/internal/frontend"
	"cxkit/internal/sample"
	"cxkit/internal/server"
	"cxkit/pkg/logging"
)

var restoreFlags struct {
	projectID        string
	quotaProjectID   string
	location         string
	agentDisplayName string
	agentURI         string
	agentURIFile     string
	serve            bool
	addr             string
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Create a new agent and restore an agent export into it",
	Long: `Creates an agent named sample-agent-<uuid>, unless --agent-display-name is
given, and restores an agent export into it. The export defaults to
` + sample.DefaultAgentURI + `. Use --agent-uri, or --agent-uri-file pointing
at a JSON file with an "agent_uri" field, to pick another one.

Prints a link to the restored agent in the Dialogflow console. With --serve
it then serves the webhook and a front end describing the restored agent.`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, _ []string) error {
	cfg := restoreConfig(cmd, loadedConfig)
	if err := cfg.ValidateRestore(); err != nil {
		return err
	}
	printer, err := rootFlags.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	agentURI, err := resolveAgentURI(cfg.Restore)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cx, err := openCX(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cx.Close(); err != nil {
			logging.Warn("Restore", "Closing clients: %v", err)
		}
	}()

	target := sample.Target{
		ProjectID:        cx.creds.ProjectID,
		Location:         cfg.Location,
		AgentDisplayName: restoreFlags.agentDisplayName,
	}
	meta, err := restoreAgent(ctx, cmd.ErrOrStderr(), printer, rootFlags.Quiet, cx.services, target, agentURI)
	if err != nil {
		return err
	}
	if !restoreFlags.serve {
		return nil
	}

	meta.StartedAt = time.Now()
	meta.Environment = frontend.DeploymentEnv(os.Environ())
	fe, err := frontend.New(meta)
	if err != nil {
		return err
	}
	return serveUntilSignal(ctx, server.Options{Addr: cfg.Serve.Addr, Frontend: fe})
}

func restoreConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	overrideString(flags.Changed("project-id"), &cfg.ProjectID, restoreFlags.projectID)
	overrideString(flags.Changed("quota-project-id"), &cfg.QuotaProjectID, restoreFlags.quotaProjectID)
	overrideString(flags.Changed("location"), &cfg.Location, restoreFlags.location)
	overrideString(flags.Changed("agent-uri"), &cfg.Restore.AgentURI, restoreFlags.agentURI)
	overrideString(flags.Changed("agent-uri-file"), &cfg.Restore.AgentURIFile, restoreFlags.agentURIFile)
	overrideString(flags.Changed("addr"), &cfg.Serve.Addr, restoreFlags.addr)
	return cfg
}

// resolveAgentURI returns the export to restore. "" selects the default.
func resolveAgentURI(cfg config.RestoreConfig) (string, error) {
	if cfg.AgentURIFile != "" {
		return sample.LoadAgentURI(cfg.AgentURIFile)
	}
	return cfg.AgentURI, nil
}

// restoreAgent restores agentURI into a new agent and prints where to find
// it. The returned metadata describes the restored agent.
func restoreAgent(ctx context.Context, out io.Writer, printer *cli.Printer, quiet bool, svc sample.Services, target sample.Target, agentURI string) (frontend.Metadata, error) {
	rs := sample.NewRestoreSample(svc, target, agentURI)

	setupErr := cli.Progress(out, quiet, "Restoring agent from "+rs.AgentURI, func() error {
		return rs.Setup(ctx)
	})
	if err := printer.Resources(rs.Resources()); err != nil {
		return frontend.Metadata{}, err
	}
	if setupErr != nil {
		return frontend.Metadata{}, setupErr
	}

	consoleURL, err := rs.ConsoleURL()
	if err != nil {
		return frontend.Metadata{}, err
	}
	fmt.Fprintf(out, "Agent console: %s\n", consoleURL)

	return frontend.Metadata{
		ProjectID:        rs.Agent.ProjectID,
		Location:         rs.Agent.Location,
		AgentName:        rs.Agent.Name(),
		AgentDisplayName: rs.Agent.DisplayName(),
		ConsoleURL:       consoleURL,
	}, nil
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	f := restoreCmd.Flags()
	f.StringVar(&restoreFlags.projectID, "project-id", "", "Google Cloud project (env: PROJECT_ID, default: from credentials)")
	f.StringVar(&restoreFlags.quotaProjectID, "quota-project-id", "", "Project billed for API quota (env: QUOTA_PROJECT_ID)")
	f.StringVar(&restoreFlags.location, "location", config.DefaultLocation, "Agent location")
	f.StringVar(&restoreFlags.agentDisplayName, "agent-display-name", "", "Display name of the new agent (default: sample-agent-<uuid>)")
	f.StringVar(&restoreFlags.agentURI, "agent-uri", "", "Agent export to restore (default: "+sample.DefaultAgentURI+")")
	f.StringVar(&restoreFlags.agentURIFile, "agent-uri-file", "", `JSON file whose "agent_uri" field names the export`)
	f.BoolVar(&restoreFlags.serve, "serve", false, "Serve the webhook and front end after restoring")
	f.StringVar(&restoreFlags.addr, "addr", config.DefaultServeAddr, "Listen address with --serve (env: PORT)")
	restoreCmd.MarkFlagsMutuallyExclusive("agent-uri", "agent-uri-file")
}
