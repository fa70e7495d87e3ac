package sample

import (
	"context"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/internal/provision"
	"cxkit/internal/webhook"
	"cxkit/pkg/logging"
)

const (
	SessionParamWebhookDisplayName = "Set Session Parameter"
	SessionParamIntentDisplayName  = "set-session-param"
)

// SessionParamPhrase is the annotated training phrase of the session
// parameter intent. The key and value parts bind the "key" and "val"
// parameters the webhook reads.
func SessionParamPhrase() *cxpb.Intent_TrainingPhrase {
	return provision.AnnotatedPhrase(
		provision.PhrasePart{Text: "Set session parameter "},
		provision.PhrasePart{Text: "session_param", ParameterID: "key"},
		provision.PhrasePart{Text: " to "},
		provision.PhrasePart{Text: "value", ParameterID: "val"},
	)
}

// SessionParamSample provisions an agent whose main page asks the webhook to
// store a session parameter taken from the user's utterance.
type SessionParamSample struct {
	Agent   *provision.AgentDelegator
	Webhook *provision.WebhookDelegator
	Intent  *provision.IntentDelegator
	Page    *provision.PageDelegator
	Flow    *provision.FlowDelegator

	sessions Sessions
}

func NewSessionParamSample(svc Services, target Target) *SessionParamSample {
	s := &SessionParamSample{sessions: svc.Sessions}
	s.Agent = provision.NewAgentDelegator(svc.Agents, target.ProjectID, target.Location, target.AgentDisplayName)
	s.Webhook = provision.NewWebhookDelegator(svc.Webhooks, s.Agent, SessionParamWebhookDisplayName, target.WebhookURI)
	s.Intent = provision.NewAnnotatedIntentDelegator(svc.Intents, s.Agent, SessionParamIntentDisplayName,
		[]*cxpb.Intent_TrainingPhrase{SessionParamPhrase()},
		[]*cxpb.Intent_Parameter{
			provision.Parameter("key", provision.SysAnyEntityType),
			provision.Parameter("val", provision.SysAnyEntityType),
		})
	s.Page = provision.NewFulfillmentPageDelegator(svc.Pages, s.Agent, PageDisplayName, PageEntryText, s.Webhook, webhook.TagSetSessionParam)
	s.Flow = provision.NewFlowDelegator(svc.Flows, s.Agent)
	return s
}

// Setup provisions agent, webhook, intent, page and the start flow route, in
// that order.
func (s *SessionParamSample) Setup(ctx context.Context) error {
	logging.Info("Sample", "Setting up session parameter sample on agent %q", s.Agent.DisplayName())
	return runStages(ctx, []stage{
		{"agent", s.Agent.Initialize},
		{"webhook", s.Webhook.Initialize},
		{"intent", s.Intent.Initialize},
		{"page", s.Page.Initialize},
		{"flow", s.Flow.Initialize},
		{"route", func(ctx context.Context) error {
			intent, err := s.Intent.Intent()
			if err != nil {
				return err
			}
			page, err := s.Page.Page()
			if err != nil {
				return err
			}
			return s.Flow.AppendTransitionRoute(ctx, intent.GetName(), page.GetName())
		}},
	})
}

// Converse sends inputs to a fresh session on the sample's agent.
func (s *SessionParamSample) Converse(ctx context.Context, inputs []string) ([]Turn, error) {
	return Converse(ctx, s.sessions, s.Agent, inputs)
}

func (s *SessionParamSample) TearDown(ctx context.Context) error {
	return tearDownAll(ctx, s.Page.TearDown, s.Intent.TearDown, s.Webhook.TearDown, s.Agent.TearDown)
}

func (s *SessionParamSample) Resources() []Resource {
	return []Resource{
		summarize("agent", s.Agent),
		summarize("webhook", s.Webhook),
		summarize("intent", s.Intent),
		summarize("page", s.Page),
	}
}
