package dialogflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cx "cloud.google.com/go/dialogflow/cx/apiv3"
	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"google.golang.org/api/iterator"

	"cxkit/internal/provision"
	"cxkit/internal/testrun"
)

type pager[T any] interface {
	Next() (T, error)
}

// drain reads every item from a list iterator.
func drain[T any](it pager[T]) ([]T, error) {
	var items []T
	for {
		item, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return items, nil
		}
		if err != nil {
			return nil, classify(err)
		}
		items = append(items, item)
	}
}

// Agents implements provision.Kind for agents.
type Agents struct {
	client *cx.AgentsClient
}

func (a *Agents) Create(ctx context.Context, parent string, agent *cxpb.Agent) (*cxpb.Agent, error) {
	got, err := a.client.CreateAgent(ctx, &cxpb.CreateAgentRequest{Parent: parent, Agent: agent})
	return got, classify(err)
}

func (a *Agents) List(ctx context.Context, parent string) ([]*cxpb.Agent, error) {
	return drain[*cxpb.Agent](a.client.ListAgents(ctx, &cxpb.ListAgentsRequest{Parent: parent}))
}

func (a *Agents) Get(ctx context.Context, name string) (*cxpb.Agent, error) {
	got, err := a.client.GetAgent(ctx, &cxpb.GetAgentRequest{Name: name})
	return got, classify(err)
}

func (a *Agents) Delete(ctx context.Context, name string) error {
	return classify(a.client.DeleteAgent(ctx, &cxpb.DeleteAgentRequest{Name: name}))
}

// Webhooks implements provision.Kind for webhooks.
type Webhooks struct {
	client *cx.WebhooksClient
}

func (w *Webhooks) Create(ctx context.Context, parent string, webhook *cxpb.Webhook) (*cxpb.Webhook, error) {
	got, err := w.client.CreateWebhook(ctx, &cxpb.CreateWebhookRequest{Parent: parent, Webhook: webhook})
	return got, classify(err)
}

func (w *Webhooks) List(ctx context.Context, parent string) ([]*cxpb.Webhook, error) {
	return drain[*cxpb.Webhook](w.client.ListWebhooks(ctx, &cxpb.ListWebhooksRequest{Parent: parent}))
}

func (w *Webhooks) Get(ctx context.Context, name string) (*cxpb.Webhook, error) {
	got, err := w.client.GetWebhook(ctx, &cxpb.GetWebhookRequest{Name: name})
	return got, classify(err)
}

// Delete removes the webhook even when pages still reference it.
func (w *Webhooks) Delete(ctx context.Context, name string) error {
	return classify(w.client.DeleteWebhook(ctx, &cxpb.DeleteWebhookRequest{Name: name, Force: true}))
}

// Intents implements provision.Kind for intents.
type Intents struct {
	client       *cx.IntentsClient
	languageCode string
}

func (i *Intents) Create(ctx context.Context, parent string, intent *cxpb.Intent) (*cxpb.Intent, error) {
	got, err := i.client.CreateIntent(ctx, &cxpb.CreateIntentRequest{
		Parent:       parent,
		Intent:       intent,
		LanguageCode: i.languageCode,
	})
	return got, classify(err)
}

func (i *Intents) List(ctx context.Context, parent string) ([]*cxpb.Intent, error) {
	return drain[*cxpb.Intent](i.client.ListIntents(ctx, &cxpb.ListIntentsRequest{Parent: parent, LanguageCode: i.languageCode}))
}

func (i *Intents) Get(ctx context.Context, name string) (*cxpb.Intent, error) {
	got, err := i.client.GetIntent(ctx, &cxpb.GetIntentRequest{Name: name, LanguageCode: i.languageCode})
	return got, classify(err)
}

func (i *Intents) Delete(ctx context.Context, name string) error {
	return classify(i.client.DeleteIntent(ctx, &cxpb.DeleteIntentRequest{Name: name}))
}

// Pages implements provision.Kind for pages.
type Pages struct {
	client       *cx.PagesClient
	languageCode string
}

func (p *Pages) Create(ctx context.Context, parent string, page *cxpb.Page) (*cxpb.Page, error) {
	got, err := p.client.CreatePage(ctx, &cxpb.CreatePageRequest{
		Parent:       parent,
		Page:         page,
		LanguageCode: p.languageCode,
	})
	return got, classify(err)
}

func (p *Pages) List(ctx context.Context, parent string) ([]*cxpb.Page, error) {
	return drain[*cxpb.Page](p.client.ListPages(ctx, &cxpb.ListPagesRequest{Parent: parent, LanguageCode: p.languageCode}))
}

func (p *Pages) Get(ctx context.Context, name string) (*cxpb.Page, error) {
	got, err := p.client.GetPage(ctx, &cxpb.GetPageRequest{Name: name, LanguageCode: p.languageCode})
	return got, classify(err)
}

// Delete removes the page along with routes that target it.
func (p *Pages) Delete(ctx context.Context, name string) error {
	return classify(p.client.DeletePage(ctx, &cxpb.DeletePageRequest{Name: name, Force: true}))
}

// TestCases implements provision.Kind for test cases and runs them.
type TestCases struct {
	client *cx.TestCasesClient
}

func (t *TestCases) Create(ctx context.Context, parent string, tc *cxpb.TestCase) (*cxpb.TestCase, error) {
	got, err := t.client.CreateTestCase(ctx, &cxpb.CreateTestCaseRequest{Parent: parent, TestCase: tc})
	return got, classify(err)
}

func (t *TestCases) List(ctx context.Context, parent string) ([]*cxpb.TestCase, error) {
	return drain[*cxpb.TestCase](t.client.ListTestCases(ctx, &cxpb.ListTestCasesRequest{Parent: parent}))
}

func (t *TestCases) Get(ctx context.Context, name string) (*cxpb.TestCase, error) {
	got, err := t.client.GetTestCase(ctx, &cxpb.GetTestCaseRequest{Name: name})
	return got, classify(err)
}

// Delete removes one test case. The service only offers batch deletion, so
// the agent is derived from the test case name.
func (t *TestCases) Delete(ctx context.Context, name string) error {
	parent, err := testCaseParent(name)
	if err != nil {
		return err
	}
	return classify(t.client.BatchDeleteTestCases(ctx, &cxpb.BatchDeleteTestCasesRequest{
		Parent: parent,
		Names:  []string{name},
	}))
}

// RunTestCase implements testrun.Executor. It starts the run and blocks until
// the long-running operation finishes.
func (t *TestCases) RunTestCase(ctx context.Context, name string) (*cxpb.TestCaseResult, error) {
	op, err := t.client.RunTestCase(ctx, &cxpb.RunTestCaseRequest{Name: name})
	if err != nil {
		return nil, classifyRun(err)
	}
	resp, err := op.Wait(ctx)
	if err != nil {
		return nil, classifyRun(err)
	}
	return resp.GetResult(), nil
}

func testCaseParent(name string) (string, error) {
	parent, _, ok := strings.Cut(name, "/testCases/")
	if !ok {
		return "", fmt.Errorf("malformed test case name %q", name)
	}
	return parent, nil
}

var (
	_ provision.Kind[*cxpb.Agent]    = (*Agents)(nil)
	_ provision.Kind[*cxpb.Webhook]  = (*Webhooks)(nil)
	_ provision.Kind[*cxpb.Intent]   = (*Intents)(nil)
	_ provision.Kind[*cxpb.Page]     = (*Pages)(nil)
	_ provision.Kind[*cxpb.TestCase] = (*TestCases)(nil)
	_ provision.FlowAPI              = (*Flows)(nil)
	_ testrun.Executor               = (*TestCases)(nil)
)
