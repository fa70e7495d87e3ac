package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxkit/internal/cli"
	"cxkit/internal/config"
	"cxkit/internal/sample"
	"cxkit/internal/testing/fakecx"
	"cxkit/internal/testing/mock"
	"cxkit/internal/testrun"
	"cxkit/internal/webhook"
)

func fakeServices(b *fakecx.Backend) sample.Services {
	return sample.Services{
		Agents:    b.Agents,
		Webhooks:  b.Webhooks,
		Intents:   b.Intents,
		Pages:     b.Pages,
		TestCases: b.TestCases,
		Flows:     b.Flows,
		Sessions:  b,
		Restorer:  b,
	}
}

var testTarget = sample.Target{
	ProjectID:        "my-project",
	AgentDisplayName: "Webhook Sample Agent",
	WebhookURI:       "https://example.com/webhook",
}

func newTestRun(format cli.OutputFormat) (*provisionRun, *bytes.Buffer, *mock.MockClock) {
	var out bytes.Buffer
	clock := mock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return &provisionRun{
		out:        &out,
		printer:    &cli.Printer{Out: &out, Format: format},
		quiet:      true,
		sampleName: config.SampleWebhook,
		wait:       time.Second,
		maxRetries: 3,
		clock:      clock,
	}, &out, clock
}

func TestProvisionRun_WebhookSample(t *testing.T) {
	backend := fakecx.New()
	run, out, clock := newTestRun(cli.OutputFormatTable)

	err := run.execute(context.Background(), fakeServices(backend), testTarget, backend)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Webhook Sample Agent")
	assert.Contains(t, out.String(), "Test Case XFAIL")
	assert.Contains(t, out.String(), "3 test case(s), 3 as expected")
	assert.Equal(t, 3, backend.Runs())
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.Sleeps())
	assert.Equal(t, 1, backend.Agents.Len("projects/my-project/locations/global"), "nothing torn down by default")
}

func TestProvisionRun_SkipTests(t *testing.T) {
	backend := fakecx.New()
	run, out, _ := newTestRun(cli.OutputFormatTable)
	run.skipTests = true

	require.NoError(t, run.execute(context.Background(), fakeServices(backend), testTarget, backend))

	assert.Equal(t, 0, backend.Runs())
	assert.NotContains(t, out.String(), "as expected")
}

func TestProvisionRun_TrainAndConverse(t *testing.T) {
	backend := fakecx.New()
	run, out, _ := newTestRun(cli.OutputFormatWide)
	run.skipTests = true
	run.train = true
	run.inputs = []string{"trigger intent"}

	require.NoError(t, run.execute(context.Background(), fakeServices(backend), testTarget, backend))

	assert.Len(t, backend.Flows.Trained(), 1)
	assert.Len(t, backend.Sessions(), 1)
	assert.Contains(t, out.String(), webhook.ExpectedReply("enter_main_page", "trigger intent"))
}

func TestProvisionRun_TearDown(t *testing.T) {
	backend := fakecx.New()
	run, _, _ := newTestRun(cli.OutputFormatTable)
	run.tearDown = true

	require.NoError(t, run.execute(context.Background(), fakeServices(backend), testTarget, backend))

	assert.Equal(t, 0, backend.Agents.Len("projects/my-project/locations/global"))
}

func TestProvisionRun_TearDownAfterFailure(t *testing.T) {
	backend := fakecx.New()
	backend.NotReadyRuns = 100
	run, _, _ := newTestRun(cli.OutputFormatTable)
	run.tearDown = true

	err := run.execute(context.Background(), fakeServices(backend), testTarget, backend)

	var exhausted *testrun.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, ExitCodeRetriesExhausted, getExitCode(err))
	assert.Equal(t, 0, backend.Agents.Len("projects/my-project/locations/global"))
}

func TestProvisionRun_SetupFailure(t *testing.T) {
	backend := fakecx.New()
	denied := errors.New("permission denied")
	backend.Webhooks.CreateErr = denied
	run, out, _ := newTestRun(cli.OutputFormatTable)

	err := run.execute(context.Background(), fakeServices(backend), testTarget, backend)

	require.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "setting up webhook")
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Contains(t, out.String(), "Webhook Sample Agent", "resolved resources are still listed")
	assert.Contains(t, out.String(), sample.Unresolved)
	assert.Equal(t, 0, backend.Runs())
}

func TestProvisionRun_SessionParamSample(t *testing.T) {
	backend := fakecx.New()
	run, out, _ := newTestRun(cli.OutputFormatJSON)
	run.sampleName = config.SampleSessionParam

	require.NoError(t, run.execute(context.Background(), fakeServices(backend), testTarget, backend))

	assert.Equal(t, 0, backend.Runs(), "the session-param sample has no test cases")
	assert.Len(t, backend.Sessions(), 1)
	assert.Contains(t, out.String(), webhook.SessionParamReply)
}

func TestProvisionConfig_FlagsOverride(t *testing.T) {
	cmd := &cobra.Command{Use: "provision"}
	cmd.Flags().AddFlagSet(provisionCmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{"--project-id", "flag-project", "--wait", "2s", "--sample", "session-param"}))
	t.Cleanup(func() {
		provisionFlags.projectID = ""
		provisionFlags.wait = config.DefaultWait
		provisionFlags.sample = config.SampleWebhook
		provisionCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	})

	base := config.GetDefaultConfig()
	base.ProjectID = "file-project"
	base.Provision.AgentDisplayName = "From File"

	cfg := provisionConfig(cmd, base)

	assert.Equal(t, "flag-project", cfg.ProjectID)
	assert.Equal(t, 2*time.Second, cfg.Provision.Wait)
	assert.Equal(t, config.SampleSessionParam, cfg.Provision.Sample)
	assert.Equal(t, "From File", cfg.Provision.AgentDisplayName, "unset flags keep the file value")
	assert.Equal(t, config.DefaultMaxRetries, cfg.Provision.MaxRetries)
}
