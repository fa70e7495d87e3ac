package sample

import (
	"context"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/internal/provision"
)

// Sessions sends a query to a conversation session.
type Sessions interface {
	DetectIntent(ctx context.Context, session string, input *cxpb.QueryInput) (*cxpb.QueryResult, error)
}

// Restorer replaces an agent's content with an agent export.
type Restorer interface {
	RestoreAgent(ctx context.Context, agent, agentURI string) error
}

// Services are the remote APIs a sample provisions through.
type Services struct {
	Agents    provision.Kind[*cxpb.Agent]
	Webhooks  provision.Kind[*cxpb.Webhook]
	Intents   provision.Kind[*cxpb.Intent]
	Pages     provision.Kind[*cxpb.Page]
	TestCases provision.Kind[*cxpb.TestCase]
	Flows     provision.FlowAPI
	Sessions  Sessions
	Restorer  Restorer
}

// Target is where a sample's agent lives.
type Target struct {
	ProjectID        string
	Location         string
	AgentDisplayName string
	WebhookURI       string
}
