package config

import "time"

// Config is the top-level configuration for cxkit.
type Config struct {
	ProjectID       string `yaml:"projectId,omitempty"`
	QuotaProjectID  string `yaml:"quotaProjectId,omitempty"`
	Location        string `yaml:"location,omitempty"`
	CredentialsFile string `yaml:"credentialsFile,omitempty"`
	LogLevel        string `yaml:"logLevel,omitempty"`

	Provision ProvisionConfig `yaml:"provision"`
	Restore   RestoreConfig   `yaml:"restore"`
	Serve     ServeConfig     `yaml:"serve"`
	LiveCheck LiveCheckConfig `yaml:"liveCheck"`
}

// ProvisionConfig configures the webhook sample.
type ProvisionConfig struct {
	AgentDisplayName string        `yaml:"agentDisplayName,omitempty"`
	WebhookURI       string        `yaml:"webhookUri,omitempty"`
	Sample           string        `yaml:"sample,omitempty"`     // "webhook" or "session-param"
	Wait             time.Duration `yaml:"wait,omitempty"`       // Pause before every test run (default: 10s)
	MaxRetries       int           `yaml:"maxRetries,omitempty"` // Runs allowed while the model trains (default: 3)
}

// RestoreConfig configures restoring an agent export.
type RestoreConfig struct {
	AgentURI     string `yaml:"agentUri,omitempty"`
	AgentURIFile string `yaml:"agentUriFile,omitempty"`
}

// ServeConfig configures the webhook and front-end server.
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"` // Listen address (default: :8080)
}

// LiveCheckConfig configures the deployed webhook check.
type LiveCheckConfig struct {
	Function string `yaml:"function,omitempty"`
	Location string `yaml:"location,omitempty"` // Cloud Functions region (default: us-central1)
}

const (
	SampleWebhook      = "webhook"
	SampleSessionParam = "session-param"
)
