package dialogflow

import (
	"context"

	cx "cloud.google.com/go/dialogflow/cx/apiv3"
	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/pkg/logging"
)

// Sessions sends queries to an agent session.
type Sessions struct {
	client *cx.SessionsClient
}

func (s *Sessions) DetectIntent(ctx context.Context, session string, input *cxpb.QueryInput) (*cxpb.QueryResult, error) {
	resp, err := s.client.DetectIntent(ctx, &cxpb.DetectIntentRequest{Session: session, QueryInput: input})
	if err != nil {
		return nil, classify(err)
	}
	return resp.GetQueryResult(), nil
}

// Restorer replaces an agent's content with an exported agent.
type Restorer struct {
	client *cx.AgentsClient
}

// RestoreAgent restores agent from agentURI, a Cloud Storage URI of an
// agent export, and waits for the operation to finish.
func (r *Restorer) RestoreAgent(ctx context.Context, agent, agentURI string) error {
	op, err := r.client.RestoreAgent(ctx, &cxpb.RestoreAgentRequest{
		Name:  agent,
		Agent: &cxpb.RestoreAgentRequest_AgentUri{AgentUri: agentURI},
	})
	if err != nil {
		return classify(err)
	}
	logging.Debug(subsystem, "Restoring %s from %s (operation %s)", agent, agentURI, op.Name())
	return classify(op.Wait(ctx))
}
