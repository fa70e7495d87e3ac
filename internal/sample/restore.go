package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"cxkit/internal/provision"
	"cxkit/pkg/logging"
)

// DefaultAgentURI is the public travel agent export restored when no other
// URI is given.
const DefaultAgentURI = "gs://agent-testing/travel"

// ConsoleURLFormat is the Dialogflow console page of an agent's start flow.
const ConsoleURLFormat = "https://dialogflow.cloud.google.com/cx/projects/%s/locations/%s/agents/%s/flows/00000000-0000-0000-0000-000000000000/flow_creation"

// AgentURIFile is the JSON document naming an agent export.
type AgentURIFile struct {
	AgentURI string `json:"agent_uri"`
}

// LoadAgentURI reads the agent_uri field of the JSON file at path.
func LoadAgentURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading agent uri file: %w", err)
	}
	var f AgentURIFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("parsing agent uri file %s: %w", path, err)
	}
	if f.AgentURI == "" {
		return "", fmt.Errorf("agent uri file %s has no agent_uri", path)
	}
	return f.AgentURI, nil
}

// NewAgentDisplayName returns a unique display name for a restored agent.
func NewAgentDisplayName() string {
	return "sample-agent-" + uuid.NewString()
}

// RestoreSample creates a fresh agent and restores an agent export into it.
type RestoreSample struct {
	Agent    *provision.AgentDelegator
	AgentURI string

	restorer Restorer
}

// NewRestoreSample builds a restore of agentURI into a new agent. An empty
// display name gets a unique one and an empty URI selects DefaultAgentURI.
func NewRestoreSample(svc Services, target Target, agentURI string) *RestoreSample {
	if target.AgentDisplayName == "" {
		target.AgentDisplayName = NewAgentDisplayName()
	}
	if agentURI == "" {
		agentURI = DefaultAgentURI
	}
	return &RestoreSample{
		Agent:    provision.NewAgentDelegator(svc.Agents, target.ProjectID, target.Location, target.AgentDisplayName),
		AgentURI: agentURI,
		restorer: svc.Restorer,
	}
}

// Setup creates the agent and restores the export into it.
func (s *RestoreSample) Setup(ctx context.Context) error {
	if err := s.Agent.Initialize(ctx); err != nil {
		return err
	}
	agent, err := s.Agent.Agent()
	if err != nil {
		return err
	}
	if s.Agent.Status() != provision.Created {
		return fmt.Errorf("%w: %q (%s)", ErrAgentExists, s.Agent.DisplayName(), agent.GetName())
	}
	logging.Info("Sample", "Restoring agent %s from %s", agent.GetName(), s.AgentURI)
	if err := s.restorer.RestoreAgent(ctx, agent.GetName(), s.AgentURI); err != nil {
		return fmt.Errorf("restoring agent %s: %w", agent.GetName(), err)
	}
	return nil
}

// ErrAgentExists is returned instead of restoring into an agent that was
// already there. Restoring replaces an agent's whole content.
var ErrAgentExists = errors.New("agent already exists, refusing to overwrite it")

// ConsoleURL links to the restored agent in the Dialogflow console.
func (s *RestoreSample) ConsoleURL() (string, error) {
	agent, err := s.Agent.Agent()
	if err != nil {
		return "", err
	}
	return ConsoleURL(agent.GetName())
}

// ConsoleURL builds the console link for a full agent resource name.
func ConsoleURL(agentName string) (string, error) {
	// projects/{p}/locations/{l}/agents/{id}
	parts := strings.Split(agentName, "/")
	if len(parts) != 6 || parts[0] != "projects" || parts[2] != "locations" || parts[4] != "agents" {
		return "", errMalformedAgentName(agentName)
	}
	return fmt.Sprintf(ConsoleURLFormat, parts[1], parts[3], parts[5]), nil
}

var ErrMalformedAgentName = errors.New("malformed agent name")

func errMalformedAgentName(name string) error {
	return fmt.Errorf("%w: %q", ErrMalformedAgentName, name)
}

func (s *RestoreSample) Resources() []Resource {
	return []Resource{summarize("agent", s.Agent)}
}
