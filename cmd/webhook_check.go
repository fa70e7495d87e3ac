package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"cxkit/internal/auth"
	"cxkit/internal/cli"
	"cxkit/internal/config"
	"cxkit/internal/livecheck"
	"cxkit/internal/webhook"
	"cxkit/pkg/logging"
)

var webhookCheckFlags struct {
	projectID string
	function  string
	location  string
}

var webhookCheckCmd = &cobra.Command{
	Use:   "webhook-check",
	Short: "Call the deployed webhook Cloud Function and check its reply",
	Long: `Calls the deployed webhook Cloud Function with a fulfillment request for
the text "` + livecheck.ExampleText + `" and the tag "` + livecheck.ExampleTag + `", and checks
that it answers the way the webhook handler in this binary would.

The function is named by --function or TEST_FUNCTION, in the project given by
--project-id or PROJECT_ID. Credentials come from SVC_ACCOUNT_FILE when set,
otherwise from Application Default Credentials.

Exits with code 2 when the function answers with the wrong text.`,
	Args: cobra.NoArgs,
	RunE: runWebhookCheck,
}

func runWebhookCheck(cmd *cobra.Command, _ []string) error {
	cfg := webhookCheckConfig(cmd, loadedConfig)
	if err := cfg.ValidateLiveCheck(); err != nil {
		return err
	}
	printer, err := rootFlags.Printer(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	creds, err := auth.Resolve(ctx, credentialOptions(cfg))
	if err != nil {
		return err
	}
	caller, err := livecheck.NewFunctionsCaller(ctx, creds)
	if err != nil {
		return err
	}
	defer func() {
		if err := caller.Close(); err != nil {
			logging.Warn("WebhookCheck", "Closing client: %v", err)
		}
	}()

	return checkWebhook(ctx, printer, caller, cfg.ProjectID, cfg.LiveCheck)
}

func webhookCheckConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	overrideString(flags.Changed("project-id"), &cfg.ProjectID, webhookCheckFlags.projectID)
	overrideString(flags.Changed("function"), &cfg.LiveCheck.Function, webhookCheckFlags.function)
	overrideString(flags.Changed("location"), &cfg.LiveCheck.Location, webhookCheckFlags.location)
	return cfg
}

// checkWebhook runs the live check and prints its outcome. A mismatch is
// printed and then returned.
func checkWebhook(ctx context.Context, printer *cli.Printer, caller livecheck.Caller, projectID string, cfg config.LiveCheckConfig) error {
	name := livecheck.FunctionName(projectID, cfg.Location, cfg.Function)
	got, err := livecheck.Check(ctx, caller, name, livecheck.ExampleText, livecheck.ExampleTag)

	var mismatch *livecheck.MismatchError
	if err != nil && !errors.As(err, &mismatch) {
		return err
	}
	result := cli.LiveCheckResult{
		Function: name,
		Want:     webhook.Reply(livecheck.ExampleText, livecheck.ExampleTag),
		Got:      got,
		Passed:   err == nil,
	}
	if printErr := printer.LiveCheck(result); printErr != nil {
		return errors.Join(err, printErr)
	}
	return err
}

func init() {
	rootCmd.AddCommand(webhookCheckCmd)

	f := webhookCheckCmd.Flags()
	f.StringVar(&webhookCheckFlags.projectID, "project-id", "", "Project that hosts the function (env: PROJECT_ID)")
	f.StringVar(&webhookCheckFlags.function, "function", "", "Name of the deployed function (env: TEST_FUNCTION)")
	f.StringVar(&webhookCheckFlags.location, "location", config.DefaultLiveCheckLocation, "Cloud Functions region")
}
