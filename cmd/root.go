package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cxkit/internal/cli"
	"cxkit/internal/config"
	"cxkit/internal/livecheck"
	"cxkit/internal/sample"
	"cxkit/internal/testrun"
	"cxkit/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (API failure, invalid arguments).
	ExitCodeError = 1
	// ExitCodeTestFailure indicates a test case or webhook check did not
	// behave as expected.
	ExitCodeTestFailure = 2
	// ExitCodeRetriesExhausted indicates the agent model never became ready.
	ExitCodeRetriesExhausted = 3
)

var (
	rootFlags cli.CommandFlags
	logLevel  string

	// loadedConfig is populated before any subcommand runs.
	loadedConfig config.Config
)

// rootCmd represents the base command for cxkit.
var rootCmd = &cobra.Command{
	Use:   "cxkit",
	Short: "Provision and exercise Dialogflow CX sample agents",
	Long: `cxkit provisions Dialogflow CX sample agents and exercises them.

It creates agents, webhooks, intents, pages, flow routes and test cases
idempotently, runs the test cases against the live agent, restores agent
exports, and serves the fulfillment webhook and a demo front end.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code matching the error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cxkit version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), cli.Describe(err))
		os.Exit(getExitCode(err))
	}
}

// setup loads the configuration and initializes logging. --log-level wins
// over CXKIT_LOG_LEVEL, which wins over the config file.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := rootFlags.LoadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	logging.InitForCLI(logging.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())
	logging.Debug("Config", "Effective configuration:\n%s", cfg)

	loadedConfig = cfg
	return nil
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var exhausted *testrun.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return ExitCodeRetriesExhausted
	}

	var failure *testrun.TestCaseFailureError
	if errors.As(err, &failure) {
		return ExitCodeTestFailure
	}
	var outcome *sample.OutcomeError
	if errors.As(err, &outcome) {
		return ExitCodeTestFailure
	}
	var mismatch *livecheck.MismatchError
	if errors.As(err, &mismatch) {
		return ExitCodeTestFailure
	}

	return ExitCodeError
}

func init() {
	cli.RegisterCommonFlags(rootCmd, &rootFlags)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env: CXKIT_LOG_LEVEL)")

	rootCmd.AddCommand(newVersionCmd())
}
