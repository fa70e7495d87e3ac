package provision

import (
	"context"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
)

// WebhookDelegator provisions a generic web service webhook on the agent.
type WebhookDelegator struct {
	delegator[*cxpb.Webhook]

	agent *AgentDelegator
	uri   string
}

func NewWebhookDelegator(kind Kind[*cxpb.Webhook], agent *AgentDelegator, displayName, uri string) *WebhookDelegator {
	return &WebhookDelegator{
		delegator: newDelegator(kind, "webhook", displayName),
		agent:     agent,
		uri:       uri,
	}
}

func (d *WebhookDelegator) Initialize(ctx context.Context) error {
	agent, err := d.agent.Agent()
	if err != nil {
		return err
	}
	return d.ensure(ctx, agent.GetName(), BuildWebhook(d.displayName, d.uri))
}

func (d *WebhookDelegator) Webhook() (*cxpb.Webhook, error) {
	return d.resource()
}

func (d *WebhookDelegator) TearDown(ctx context.Context) error {
	return d.tearDown(ctx)
}

// IntentDelegator provisions an intent on the agent.
type IntentDelegator struct {
	delegator[*cxpb.Intent]

	agent      *AgentDelegator
	phrases    []*cxpb.Intent_TrainingPhrase
	parameters []*cxpb.Intent_Parameter
}

// NewIntentDelegator returns a delegator for an intent trained on plain
// utterances.
func NewIntentDelegator(kind Kind[*cxpb.Intent], agent *AgentDelegator, displayName string, phrases ...string) *IntentDelegator {
	return NewAnnotatedIntentDelegator(kind, agent, displayName, TrainingPhrases(phrases...), nil)
}

// NewAnnotatedIntentDelegator returns a delegator for an intent whose
// training phrases carry parameter annotations.
func NewAnnotatedIntentDelegator(kind Kind[*cxpb.Intent], agent *AgentDelegator, displayName string, phrases []*cxpb.Intent_TrainingPhrase, params []*cxpb.Intent_Parameter) *IntentDelegator {
	return &IntentDelegator{
		delegator:  newDelegator(kind, "intent", displayName),
		agent:      agent,
		phrases:    phrases,
		parameters: params,
	}
}

func (d *IntentDelegator) Initialize(ctx context.Context) error {
	agent, err := d.agent.Agent()
	if err != nil {
		return err
	}
	return d.ensure(ctx, agent.GetName(), BuildIntent(d.displayName, d.phrases, d.parameters))
}

func (d *IntentDelegator) Intent() (*cxpb.Intent, error) {
	return d.resource()
}

func (d *IntentDelegator) TearDown(ctx context.Context) error {
	return d.tearDown(ctx)
}

// PageDelegator provisions a page on the agent's start flow, optionally with
// an entry fulfillment that calls a webhook.
type PageDelegator struct {
	delegator[*cxpb.Page]

	agent     *AgentDelegator
	entryText string
	webhook   *WebhookDelegator
	tag       string
}

// NewPageDelegator returns a delegator for a page without entry fulfillment.
func NewPageDelegator(kind Kind[*cxpb.Page], agent *AgentDelegator, displayName string) *PageDelegator {
	return &PageDelegator{
		delegator: newDelegator(kind, "page", displayName),
		agent:     agent,
	}
}

// NewFulfillmentPageDelegator returns a delegator for a page that answers
// entryText on entry and, when webhook is non-nil, calls it with tag.
func NewFulfillmentPageDelegator(kind Kind[*cxpb.Page], agent *AgentDelegator, displayName, entryText string, webhook *WebhookDelegator, tag string) *PageDelegator {
	d := NewPageDelegator(kind, agent, displayName)
	d.entryText = entryText
	d.webhook = webhook
	d.tag = tag
	return d
}

func (d *PageDelegator) entryFulfillment() (*cxpb.Fulfillment, error) {
	if d.entryText == "" && d.webhook == nil {
		return nil, nil
	}
	var webhookName string
	if d.webhook != nil {
		wh, err := d.webhook.Webhook()
		if err != nil {
			return nil, err
		}
		webhookName = wh.GetName()
	}
	return BuildEntryFulfillment(d.entryText, webhookName, d.tag), nil
}

func (d *PageDelegator) Initialize(ctx context.Context) error {
	flow, err := d.agent.StartFlow()
	if err != nil {
		return err
	}
	entry, err := d.entryFulfillment()
	if err != nil {
		return err
	}
	return d.ensure(ctx, flow, BuildPage(d.displayName, entry))
}

func (d *PageDelegator) Page() (*cxpb.Page, error) {
	return d.resource()
}

func (d *PageDelegator) TearDown(ctx context.Context) error {
	return d.tearDown(ctx)
}
