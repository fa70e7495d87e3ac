package sample

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cxkit/internal/provision"
	"cxkit/pkg/logging"
)

// Turn is one user utterance and the agent's text replies to it.
type Turn struct {
	Input     string
	Responses []string
	Page      string
	Intent    string
}

// SessionName returns a new session id under agent.
func SessionName(agent string) string {
	return fmt.Sprintf("%s/sessions/%s", agent, uuid.NewString())
}

// Converse sends inputs, in order, to one fresh session on agent.
func Converse(ctx context.Context, sessions Sessions, agent *provision.AgentDelegator, inputs []string) ([]Turn, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	a, err := agent.Agent()
	if err != nil {
		return nil, err
	}
	session := SessionName(a.GetName())
	logging.Debug("Sample", "Starting session %s", session)

	turns := make([]Turn, 0, len(inputs))
	for _, input := range inputs {
		result, err := sessions.DetectIntent(ctx, session, provision.TextQuery(input, agent.LanguageCode()))
		if err != nil {
			return turns, fmt.Errorf("detecting intent for %q: %w", input, err)
		}
		turn := Turn{
			Input:  input,
			Page:   result.GetCurrentPage().GetDisplayName(),
			Intent: result.GetIntent().GetDisplayName(),
		}
		for _, msg := range result.GetResponseMessages() {
			turn.Responses = append(turn.Responses, msg.GetText().GetText()...)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
