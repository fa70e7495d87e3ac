package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"cxkit/internal/cli"
	"cxkit/internal/clock"
	"cxkit/internal/config"
	"cxkit/internal/provision"
	"cxkit/internal/sample"
		"cxkit/internal/testrun"
	"cxkit/pkg/logging"
)

var provisionFlags struct {
	projectID        string
	quotaProjectID   string
	location         string
	agentDisplayName string
	webhookURI       string
	sample           string
	wait             time.Duration
	maxRetries       int
	skipTests        bool
	train            bool
	tearDown         bool
	userInput        []string
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision a sample agent and run its test cases",
	Long: `Provisions a Dialogflow CX sample agent and exercises it.

The webhook sample creates, or reuses when they already exist:
  - an agent with the given display name
  - a webhook pointing at --webhook-uri
  - the intent "go-to-example-page"
  - the page "Main Page" whose entry fulfillment calls the webhook
  - a start flow route from the intent to the page
  - three test cases, one of which is expected to fail

It then runs every test case, waiting --wait before each run and retrying
while the agent's NLU model is still training, up to --max-retries times.

The session-param sample provisions a page that asks the webhook to store a
session parameter taken from the user's utterance. It has no test cases.

Exit codes:
  0  everything behaved as expected
  1  an API or configuration error
  2  a test case did not behave as expected
  3  the agent model never became ready`,
	Args: cobra.NoArgs,
	RunE: runProvision,
}

func runProvision(cmd *cobra.Command, _ []string) error {
	cfg := provisionConfig(cmd, loadedConfig)
	if err := cfg.ValidateProvision(); err != nil {
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
	cx, err := openCX(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cx.Close(); err != nil {
			logging.Warn("Provision", "Closing clients: %v", err)
		}
	}()

	target := sample.Target{
		ProjectID:        cx.creds.ProjectID,
		Location:         cfg.Location,
		AgentDisplayName: cfg.Provision.AgentDisplayName,
		WebhookURI:       cfg.Provision.WebhookURI,
	}
	run := newProvisionRun(cmd.ErrOrStderr(), printer, cfg)
	return run.execute(ctx, cx.services, target, cx.clients.TestCases())
}

// provisionConfig applies the flags that were set on top of cfg.
func provisionConfig(cmd *cobra.Command, cfg config.Config) config.Config {
	flags := cmd.Flags()
	overrideString(flags.Changed("project-id"), &cfg.ProjectID, provisionFlags.projectID)
	overrideString(flags.Changed("quota-project-id"), &cfg.QuotaProjectID, provisionFlags.quotaProjectID)
	overrideString(flags.Changed("location"), &cfg.Location, provisionFlags.location)
	overrideString(flags.Changed("agent-display-name"), &cfg.Provision.AgentDisplayName, provisionFlags.agentDisplayName)
	overrideString(flags.Changed("webhook-uri"), &cfg.Provision.WebhookURI, provisionFlags.webhookURI)
	overrideString(flags.Changed("sample"), &cfg.Provision.Sample, provisionFlags.sample)
	if flags.Changed("wait") {
		cfg.Provision.Wait = provisionFlags.wait
	}
	if flags.Changed("max-retries") {
		cfg.Provision.MaxRetries = provisionFlags.maxRetries
	}
	return cfg
}

func overrideString(changed bool, dst *string, value string) {
	if changed {
		*dst = value
	}
}

// provisionRun carries one provision invocation's choices.
type provisionRun struct {
	out     io.Writer
	printer *cli.Printer
	quiet   bool

	sampleName string
	skipTests  bool
	train      bool
	tearDown   bool
	inputs     []string

	wait       time.Duration
	maxRetries int
	clock      clock.Clock
}

func newProvisionRun(out io.Writer, printer *cli.Printer, cfg config.Config) *provisionRun {
	return &provisionRun{
		out:        out,
		printer:    printer,
		quiet:      rootFlags.Quiet,
		sampleName: cfg.Provision.Sample,
		skipTests:  provisionFlags.skipTests,
		train:      provisionFlags.train,
		tearDown:   provisionFlags.tearDown,
		inputs:     provisionFlags.userInput,
		wait:       cfg.Provision.Wait,
		maxRetries: cfg.Provision.MaxRetries,
		clock:      clock.Real{},
	}
}

// provisioned is what both samples expose to the command.
type provisioned interface {
	Setup(ctx context.Context) error
	Resources() []sample.Resource
	Converse(ctx context.Context, inputs []string) ([]sample.Turn, error)
	TearDown(ctx context.Context) error
}

func (p *provisionRun) execute(ctx context.Context, svc sample.Services, target sample.Target, exec testrun.Executor) error {
	switch p.sampleName {
	case config.SampleSessionParam:
		s := sample.NewSessionParamSample(svc, target)
		inputs := p.inputs
		if len(inputs) == 0 {
			inputs = []string{sessionParamExample}
		}
		return p.run(ctx, s, s.Flow, nil, inputs)
	default:
		s := sample.NewWebhookSample(svc, target)
		var tests func(context.Context) ([]sample.Result, error)
		if !p.skipTests {
			runner := testrun.NewRunner(exec)
			runner.Wait = p.wait
			runner.MaxRetries = p.maxRetries
			runner.Clock = p.clock
			tests = func(ctx context.Context) ([]sample.Result, error) {
				return s.RunTests(ctx, runner)
			}
		}
		return p.run(ctx, s, s.Flow, tests, p.inputs)
	}
}

// sessionParamExample is the utterance sent to the session-param sample when
// no --user-input is given.
const sessionParamExample = "Set session parameter session_param to value"

func (p *provisionRun) run(ctx context.Context, s provisioned, flow *provision.FlowDelegator,
	tests func(context.Context) ([]sample.Result, error), inputs []string) (err error) {

	setupErr := cli.Progress(p.out, p.quiet, "Provisioning sample agent", func() error {
		return s.Setup(ctx)
	})
	if printErr := p.printer.Resources(s.Resources()); printErr != nil {
		return errors.Join(setupErr, printErr)
	}
	if setupErr != nil {
		return setupErr
	}

	if p.tearDown {
		defer func() {
			tdErr := cli.Progress(p.out, p.quiet, "Tearing down sample agent", func() error {
				return s.TearDown(ctx)
			})
			if tdErr != nil {
				err = errors.Join(err, fmt.Errorf("tearing down: %w", tdErr))
			}
		}()
	}

	if p.train {
		if err := cli.Progress(p.out, p.quiet, "Training start flow", func() error {
			return flow.Train(ctx)
		}); err != nil {
			return err
		}
	}

	var outcome error
	if tests != nil {
		var results []sample.Result
		runErr := cli.Progress(p.out, p.quiet, "Running test cases", func() error {
			var err error
			results, err = tests(ctx)
			return err
		})
		if len(results) > 0 {
			if err := p.printer.Results(results); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}
		outcome = sample.Check(results)
	}

	if len(inputs) > 0 {
		turns, err := s.Converse(ctx, inputs)
		if len(turns) > 0 {
			if printErr := p.printer.Turns(turns); printErr != nil {
				return printErr
			}
		}
		if err != nil {
			return err
		}
	}
	return outcome
}

func init() {
	rootCmd.AddCommand(provisionCmd)

	f := provisionCmd.Flags()
	f.StringVar(&provisionFlags.projectID, "project-id", "", "Google Cloud project (env: PROJECT_ID, default: from credentials)")
	f.StringVar(&provisionFlags.quotaProjectID, "quota-project-id", "", "Project billed for API quota (env: QUOTA_PROJECT_ID, default: --project-id)")
	f.StringVar(&provisionFlags.location, "location", config.DefaultLocation, "Agent location, e.g. global or us-central1")
	f.StringVar(&provisionFlags.agentDisplayName, "agent-display-name", "", "Display name of the agent to create or reuse")
	f.StringVar(&provisionFlags.webhookURI, "webhook-uri", "", "URI of the deployed fulfillment webhook")
	f.StringVar(&provisionFlags.sample, "sample", config.SampleWebhook, "Sample to provision: webhook or session-param")
	f.DurationVar(&provisionFlags.wait, "wait", config.DefaultWait, "Pause before every test run")
	f.IntVar(&provisionFlags.maxRetries, "max-retries", config.DefaultMaxRetries, "Test runs allowed while the agent model trains")
	f.BoolVar(&provisionFlags.skipTests, "skip-tests", false, "Provision only, do not run test cases")
	f.BoolVar(&provisionFlags.train, "train", false, "Train the start flow before running test cases")
	f.BoolVar(&provisionFlags.tearDown, "tear-down", false, "Delete everything the sample created when done")
	f.StringArrayVar(&provisionFlags.userInput, "user-input", nil, "Utterance to send to a new session after setup (repeatable)")
}
