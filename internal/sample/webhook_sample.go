package sample

import (
	"context"

	"cxkit/internal/provision"
	"cxkit/internal/testrun"
	"cxkit/internal/webhook"
	"cxkit/pkg/logging"
)

const (
	WebhookDisplayName = "Webhook 1"
	IntentDisplayName  = "go-to-example-page"
	PageDisplayName    = "Main Page"
	PageEntryText      = "Entering " + PageDisplayName
	PageWebhookTag     = "enter_main_page"
)

// IntentTrainingPhrases are the utterances that route to the main page.
var IntentTrainingPhrases = []string{"trigger intent", "trigger the intent"}

// CaseSpec describes one test case of the webhook sample.
type CaseSpec struct {
	DisplayName   string
	InputText     string
	ExpectedTexts []string
	ExpectFailure bool
}

// WebhookCases returns the test cases the webhook sample provisions. The
// webhook replies are computed by the same code that serves the webhook.
func WebhookCases() []CaseSpec {
	expected := func(input string) []string {
		return []string{PageEntryText, webhook.ExpectedReply(PageWebhookTag, input)}
	}
	return []CaseSpec{
		{DisplayName: "Test Case 0", InputText: IntentTrainingPhrases[0], ExpectedTexts: expected(IntentTrainingPhrases[0])},
		{DisplayName: "Test Case 1", InputText: IntentTrainingPhrases[1], ExpectedTexts: expected(IntentTrainingPhrases[1])},
		{DisplayName: "Test Case XFAIL", InputText: "FAIL", ExpectedTexts: []string{"FAIL"}, ExpectFailure: true},
	}
}

// Case pairs a test case delegator with its expectation.
type Case struct {
	*provision.TestCaseDelegator
	ExpectFailure bool
}

// WebhookSample provisions an agent whose main page calls a webhook on entry,
// and test cases that check the webhook's reply.
type WebhookSample struct {
	Agent   *provision.AgentDelegator
	Webhook *provision.WebhookDelegator
	Intent  *provision.IntentDelegator
	Page    *provision.PageDelegator
	Flow    *provision.FlowDelegator
	Cases   []Case

	sessions Sessions
}

// NewWebhookSample builds the delegators for target. Nothing is sent to the
// API until Setup.
func NewWebhookSample(svc Services, target Target) *WebhookSample {
	s := &WebhookSample{sessions: svc.Sessions}
	s.Agent = provision.NewAgentDelegator(svc.Agents, target.ProjectID, target.Location, target.AgentDisplayName)
	s.Webhook = provision.NewWebhookDelegator(svc.Webhooks, s.Agent, WebhookDisplayName, target.WebhookURI)
	s.Intent = provision.NewIntentDelegator(svc.Intents, s.Agent, IntentDisplayName, IntentTrainingPhrases...)
	s.Page = provision.NewFulfillmentPageDelegator(svc.Pages, s.Agent, PageDisplayName, PageEntryText, s.Webhook, PageWebhookTag)
	s.Flow = provision.NewFlowDelegator(svc.Flows, s.Agent)
	for _, spec := range WebhookCases() {
		s.Cases = append(s.Cases, Case{
			TestCaseDelegator: provision.NewTestCaseDelegator(svc.TestCases, s.Agent, s.Page, s.Intent,
				spec.DisplayName, spec.InputText, spec.ExpectedTexts),
			ExpectFailure: spec.ExpectFailure,
		})
	}
	return s
}

// Setup provisions agent, webhook, intent, page, the start flow route and
// the test cases, in that order.
func (s *WebhookSample) Setup(ctx context.Context) error {
	logging.Info("Sample", "Setting up webhook sample on agent %q", s.Agent.DisplayName())

	stages := []stage{
		{"agent", s.Agent.Initialize},
		{"webhook", s.Webhook.Initialize},
		{"intent", s.Intent.Initialize},
		{"page", s.Page.Initialize},
		{"flow", s.Flow.Initialize},
		{"route", s.route},
	}
	for _, c := range s.Cases {
		stages = append(stages, stage{c.DisplayName(), c.Initialize})
	}
	return runStages(ctx, stages)
}

func (s *WebhookSample) route(ctx context.Context) error {
	intent, err := s.Intent.Intent()
	if err != nil {
		return err
	}
	page, err := s.Page.Page()
	if err != nil {
		return err
	}
	return s.Flow.AppendTransitionRoute(ctx, intent.GetName(), page.GetName())
}

// RunTests runs every test case with runner and reports each outcome. A
// test case failure is recorded in its Result; any other error stops the run
// and is returned with the results gathered so far.
func (s *WebhookSample) RunTests(ctx context.Context, runner *testrun.Runner) ([]Result, error) {
	results := make([]Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		tc, err := c.TestCase()
		if err != nil {
			return results, err
		}
		_, runErr := runner.Run(ctx, tc)
		res, err := resultFor(c.DisplayName(), c.ExpectFailure, runErr)
		results = append(results, res)
		if err != nil {
			return results, err
		}
		if !res.AsExpected() {
			logging.Warn("Sample", "Test %q: expected failure=%t, passed=%t", res.DisplayName, res.ExpectFailure, res.Passed)
		}
	}
	return results, nil
}

// Converse sends inputs to a fresh session on the sample's agent.
func (s *WebhookSample) Converse(ctx context.Context, inputs []string) ([]Turn, error) {
	return Converse(ctx, s.sessions, s.Agent, inputs)
}

// TearDown deletes what Setup created, dependents first.
func (s *WebhookSample) TearDown(ctx context.Context) error {
	for i := len(s.Cases) - 1; i >= 0; i-- {
		if err := s.Cases[i].TearDown(ctx); err != nil {
			return err
		}
	}
	return tearDownAll(ctx, s.Page.TearDown, s.Intent.TearDown, s.Webhook.TearDown, s.Agent.TearDown)
}

// Resources lists what Setup resolved, in provisioning order.
func (s *WebhookSample) Resources() []Resource {
	out := []Resource{
		summarize("agent", s.Agent),
		summarize("webhook", s.Webhook),
		summarize("intent", s.Intent),
		summarize("page", s.Page),
	}
	for _, c := range s.Cases {
		out = append(out, summarize("test case", c.TestCaseDelegator))
	}
	return out
}
