package provision

import (
	"context"
	"fmt"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
)

const (
	DefaultLocation     = "global"
	DefaultLanguageCode = "en"
	DefaultTimeZone     = "America/Los_Angeles"
)

// AgentDelegator provisions the agent that every other resource hangs off.
type AgentDelegator struct {
	delegator[*cxpb.Agent]

	ProjectID           string
	Location            string
	DefaultLanguageCode string
	TimeZone            string
}

// NewAgentDelegator returns a delegator for the agent named displayName in
// the given project. An empty location selects DefaultLocation.
func NewAgentDelegator(kind Kind[*cxpb.Agent], projectID, location, displayName string) *AgentDelegator {
	if location == "" {
		location = DefaultLocation
	}
	return &AgentDelegator{
		delegator:           newDelegator(kind, "agent", displayName),
		ProjectID:           projectID,
		Location:            location,
		DefaultLanguageCode: DefaultLanguageCode,
		TimeZone:            DefaultTimeZone,
	}
}

// Parent is the project location the agent lives in.
func (d *AgentDelegator) Parent() string {
	return fmt.Sprintf("projects/%s/locations/%s", d.ProjectID, d.Location)
}

// Initialize creates the agent or adopts an existing one with the same
// display name.
func (d *AgentDelegator) Initialize(ctx context.Context) error {
	return d.ensure(ctx, d.Parent(), BuildAgent(d.displayName, d.DefaultLanguageCode, d.TimeZone))
}

// Agent returns the resolved agent.
func (d *AgentDelegator) Agent() (*cxpb.Agent, error) {
	return d.resource()
}

// StartFlow returns the name of the agent's default start flow.
func (d *AgentDelegator) StartFlow() (string, error) {
	agent, err := d.resource()
	if err != nil {
		return "", err
	}
	return agent.GetStartFlow(), nil
}

// LanguageCode returns the agent's default language, falling back to the
// requested one when the agent is not resolved yet.
func (d *AgentDelegator) LanguageCode() string {
	if agent, err := d.resource(); err == nil && agent.GetDefaultLanguageCode() != "" {
		return agent.GetDefaultLanguageCode()
	}
	return d.DefaultLanguageCode
}

// TearDown deletes the agent. Deleting an agent removes everything under it.
func (d *AgentDelegator) TearDown(ctx context.Context) error {
	return d.tearDown(ctx)
}
