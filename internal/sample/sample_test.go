package sample_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxkit/internal/provision"
	"cxkit/internal/sample"
	"cxkit/internal/testing/fakecx"
	"cxkit/internal/testing/mock"
	"cxkit/internal/testrun"
	"cxkit/internal/webhook"
)

func services(b *fakecx.Backend) sample.Services {
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

var target = sample.Target{
	ProjectID:        "my-project",
	AgentDisplayName: "Webhook Sample Agent",
	WebhookURI:       "https://us-central1-my-project.cloudfunctions.net/webhook",
}

func newRunner(b *fakecx.Backend) (*testrun.Runner, *mock.MockClock) {
	clock := mock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r := testrun.NewRunner(b)
	r.Clock = clock
	return r, clock
}

func TestWebhookCases(t *testing.T) {
	cases := sample.WebhookCases()
	require.Len(t, cases, 3)

	assert.Equal(t, "Test Case 0", cases[0].DisplayName)
	assert.Equal(t, []string{"Entering Main Page", "Webhook received: trigger intent (Tag: enter_main_page)"}, cases[0].ExpectedTexts)
	assert.Equal(t, "trigger the intent", cases[1].InputText)
	assert.Equal(t, []string{"Entering Main Page", "Webhook received: trigger the intent (Tag: enter_main_page)"}, cases[1].ExpectedTexts)
	assert.Equal(t, "Test Case XFAIL", cases[2].DisplayName)
	assert.Equal(t, []string{"FAIL"}, cases[2].ExpectedTexts)
	assert.True(t, cases[2].ExpectFailure)
}

func TestWebhookSample_EndToEnd(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewWebhookSample(services(backend), target)
	ctx := context.Background()

	require.NoError(t, s.Setup(ctx))
	runner, clock := newRunner(backend)
	results, err := s.RunTests(ctx, runner)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.False(t, results[2].Passed)
	assert.NotEmpty(t, results[2].Differences)
	var failure *testrun.TestCaseFailureError
	assert.ErrorAs(t, results[2].Err, &failure)
	for _, r := range results {
		assert.True(t, r.AsExpected(), r.DisplayName)
	}
	assert.NoError(t, sample.Check(results))
	assert.Len(t, clock.Sleeps(), 3)
}

func TestWebhookSample_SetupIsIdempotent(t *testing.T) {
	backend := fakecx.New()
	ctx := context.Background()
	first := sample.NewWebhookSample(services(backend), target)
	require.NoError(t, first.Setup(ctx))

	second := sample.NewWebhookSample(services(backend), target)
	require.NoError(t, second.Setup(ctx))

	assert.Equal(t, first.Agent.Name(), second.Agent.Name())
	assert.Equal(t, first.Page.Name(), second.Page.Name())
	for i := range first.Cases {
		assert.Equal(t, first.Cases[i].Name(), second.Cases[i].Name())
		assert.Equal(t, provision.Found, second.Cases[i].Status())
	}
	assert.Equal(t, 3, backend.TestCases.Len(first.Agent.Name()))
	assert.Equal(t, 1, backend.Flows.Updates())

	resources := second.Resources()
	require.Len(t, resources, 7)
	assert.Equal(t, sample.Resource{Kind: "agent", DisplayName: target.AgentDisplayName, Status: "found", Name: first.Agent.Name()}, resources[0])
	assert.Equal(t, "test case", resources[6].Kind)
	assert.Equal(t, "Test Case XFAIL", resources[6].DisplayName)
}

func TestWebhookSample_RetriesUntilModelReady(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewWebhookSample(services(backend), target)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))
	backend.NotReadyRuns = 2

	runner, clock := newRunner(backend)
	results, err := s.RunTests(ctx, runner)

	require.NoError(t, err)
	assert.True(t, results[0].Passed)
	assert.Equal(t, 5, backend.Runs())
	assert.Len(t, clock.Sleeps(), 5)
}

func TestWebhookSample_ExhaustionStopsRun(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewWebhookSample(services(backend), target)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))
	backend.NotReadyRuns = 100

	runner, _ := newRunner(backend)
	results, err := s.RunTests(ctx, runner)

	var exhausted *testrun.RetriesExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "Test Case 0", exhausted.DisplayName)
	assert.Equal(t, 3, exhausted.Attempts)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
}

func TestWebhookSample_MissedAgentLookupFailsLaterStage(t *testing.T) {
	backend := fakecx.New()
	ctx := context.Background()
	require.NoError(t, sample.NewWebhookSample(services(backend), target).Agent.Initialize(ctx))
	backend.Agents.HideFromList = true

	err := sample.NewWebhookSample(services(backend), target).Setup(ctx)

	assert.ErrorIs(t, err, &provision.NotCreatedError{})
	assert.ErrorContains(t, err, "setting up webhook: agent not yet created")
}

func TestWebhookSample_RunTestsBeforeSetup(t *testing.T) {
	s := sample.NewWebhookSample(services(fakecx.New()), target)
	runner, _ := newRunner(fakecx.New())

	_, err := s.RunTests(context.Background(), runner)

	assert.ErrorIs(t, err, &provision.NotCreatedError{})
}

func TestWebhookSample_Converse(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewWebhookSample(services(backend), target)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))

	turns, err := s.Converse(ctx, []string{"trigger intent", "what is the weather"})

	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, []string{"Entering Main Page", "Webhook received: trigger intent (Tag: enter_main_page)"}, turns[0].Responses)
	assert.Equal(t, "Main Page", turns[0].Page)
	assert.Equal(t, "go-to-example-page", turns[0].Intent)
	assert.Equal(t, []string{fakecx.NoMatchReply}, turns[1].Responses)

	sessions := backend.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, sessions[0], sessions[1], "one session per conversation")
	assert.True(t, strings.HasPrefix(sessions[0], s.Agent.Name()+"/sessions/"))
}

func TestConverseWithoutInput(t *testing.T) {
	s := sample.NewWebhookSample(services(fakecx.New()), target)
	turns, err := s.Converse(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, turns)
}

func TestWebhookSample_TearDown(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewWebhookSample(services(backend), target)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))
	agentName := s.Agent.Name()

	require.NoError(t, s.TearDown(ctx))

	assert.Equal(t, 0, backend.TestCases.Len(agentName))
	assert.Equal(t, 0, backend.Webhooks.Len(agentName))
	assert.Equal(t, 0, backend.Intents.Len(agentName))
	assert.Equal(t, 0, backend.Agents.Len("projects/my-project/locations/global"))
}

func TestSessionParamSample(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewSessionParamSample(services(backend), target)
	ctx := context.Background()
	require.NoError(t, s.Setup(ctx))

	intent, err := s.Intent.Intent()
	require.NoError(t, err)
	require.Len(t, intent.GetParameters(), 2)
	page, err := s.Page.Page()
	require.NoError(t, err)
	assert.Equal(t, webhook.TagSetSessionParam, page.GetEntryFulfillment().GetTag())

	turns, err := s.Converse(ctx, []string{"Set session parameter session_param to value"})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, []string{"Entering Main Page", webhook.SessionParamReply}, turns[0].Responses)

	require.NoError(t, s.TearDown(ctx))
	assert.Equal(t, 0, backend.Agents.Len("projects/my-project/locations/global"))
}

func TestCheck(t *testing.T) {
	failure := &testrun.TestCaseFailureError{DisplayName: "Test Case 0"}
	results := []sample.Result{
		{DisplayName: "Test Case 0", Err: failure},
		{DisplayName: "Test Case 1", Passed: true},
		{DisplayName: "Test Case XFAIL", ExpectFailure: true, Passed: true},
	}

	err := sample.Check(results)

	var outcome *sample.OutcomeError
	require.ErrorAs(t, err, &outcome)
	require.Len(t, outcome.Mismatched, 2)
	assert.Equal(t, `2 test case(s) did not behave as expected: "Test Case 0", "Test Case XFAIL"`, err.Error())
	assert.True(t, errors.Is(err, failure))
}

func TestRestoreSample(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewRestoreSample(services(backend), sample.Target{ProjectID: "my-project"}, "")
	ctx := context.Background()

	require.NoError(t, s.Setup(ctx))

	assert.True(t, strings.HasPrefix(s.Agent.DisplayName(), "sample-agent-"))
	uri, ok := backend.RestoredFrom(s.Agent.Name())
	require.True(t, ok)
	assert.Equal(t, sample.DefaultAgentURI, uri)

	url, err := s.ConsoleURL()
	require.NoError(t, err)
	assert.Equal(t, "https://dialogflow.cloud.google.com/cx/projects/my-project/locations/global/agents/1/flows/00000000-0000-0000-0000-000000000000/flow_creation", url)
}

func TestRestoreSample_CustomURI(t *testing.T) {
	backend := fakecx.New()
	s := sample.NewRestoreSample(services(backend), sample.Target{ProjectID: "p", AgentDisplayName: "travel"}, "gs://bucket/agent")

	require.NoError(t, s.Setup(context.Background()))

	uri, _ := backend.RestoredFrom(s.Agent.Name())
	assert.Equal(t, "gs://bucket/agent", uri)
	assert.Equal(t, "travel", s.Agent.DisplayName())
}

func TestRestoreSample_RefusesExistingAgent(t *testing.T) {
	backend := fakecx.New()
	ctx := context.Background()
	existing := provision.NewAgentDelegator(backend.Agents, "p", "", "prod-agent")
	require.NoError(t, existing.Initialize(ctx))

	s := sample.NewRestoreSample(services(backend), sample.Target{ProjectID: "p", AgentDisplayName: "prod-agent"}, "")
	err := s.Setup(ctx)

	require.ErrorIs(t, err, sample.ErrAgentExists)
	assert.Equal(t, provision.Found, s.Agent.Status())
	_, restored := backend.RestoredFrom(existing.Name())
	assert.False(t, restored)
}

func TestNewAgentDisplayNameIsUnique(t *testing.T) {
	assert.NotEqual(t, sample.NewAgentDisplayName(), sample.NewAgentDisplayName())
}

func TestConsoleURL(t *testing.T) {
	url, err := sample.ConsoleURL("projects/p/locations/us-central1/agents/abc")
	require.NoError(t, err)
	assert.Contains(t, url, "/projects/p/locations/us-central1/agents/abc/flows/")

	_, err = sample.ConsoleURL("projects/p/agents/abc")
	assert.ErrorIs(t, err, sample.ErrMalformedAgentName)
}

func TestLoadAgentURI(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	uri, err := sample.LoadAgentURI(write("ok.json", `{"agent_uri": "gs://bucket/agent"}`))
	require.NoError(t, err)
	assert.Equal(t, "gs://bucket/agent", uri)

	_, err = sample.LoadAgentURI(write("empty.json", `{}`))
	assert.ErrorContains(t, err, "has no agent_uri")

	_, err = sample.LoadAgentURI(write("bad.json", `{`))
	assert.ErrorContains(t, err, "parsing agent uri file")

	_, err = sample.LoadAgentURI(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "reading agent uri file")
}
