package provision

import (
	"context"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
)

// TestCaseDelegator provisions a single-turn test case that expects the
// user input to trigger an intent, land on a page and produce the given
// text responses.
type TestCaseDelegator struct {
	delegator[*cxpb.TestCase]

	agent  *AgentDelegator
	page   *PageDelegator
	intent *IntentDelegator

	InputText      string
	ExpectedTexts  []string
	WebhookEnabled bool
}

func NewTestCaseDelegator(kind Kind[*cxpb.TestCase], agent *AgentDelegator, page *PageDelegator, intent *IntentDelegator, displayName, inputText string, expected []string) *TestCaseDelegator {
	return &TestCaseDelegator{
		delegator:      newDelegator(kind, "test case", displayName),
		agent:          agent,
		page:           page,
		intent:         intent,
		InputText:      inputText,
		ExpectedTexts:  expected,
		WebhookEnabled: true,
	}
}

func (d *TestCaseDelegator) spec() (TestCaseSpec, error) {
	page, err := d.page.Page()
	if err != nil {
		return TestCaseSpec{}, err
	}
	intent, err := d.intent.Intent()
	if err != nil {
		return TestCaseSpec{}, err
	}
	flow, err := d.agent.StartFlow()
	if err != nil {
		return TestCaseSpec{}, err
	}
	return TestCaseSpec{
		DisplayName:    d.displayName,
		InputText:      d.InputText,
		LanguageCode:   d.agent.LanguageCode(),
		WebhookEnabled: d.WebhookEnabled,
		ExpectedTexts:  d.ExpectedTexts,
		ExpectedPage:   page,
		ExpectedIntent: intent,
		Flow:           flow,
	}, nil
}

func (d *TestCaseDelegator) Initialize(ctx context.Context) error {
	agent, err := d.agent.Agent()
	if err != nil {
		return err
	}
	spec, err := d.spec()
	if err != nil {
		return err
	}
	return d.ensure(ctx, agent.GetName(), BuildTestCase(spec))
}

func (d *TestCaseDelegator) TestCase() (*cxpb.TestCase, error) {
	return d.resource()
}

func (d *TestCaseDelegator) TearDown(ctx context.Context) error {
	return d.tearDown(ctx)
}
