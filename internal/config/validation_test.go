package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProvision() Config {
	cfg := GetDefaultConfig()
	cfg.Provision.AgentDisplayName = "Webhook Sample"
	cfg.Provision.WebhookURI = "https://example.com/webhook"
	return cfg
}

func TestValidateProvision(t *testing.T) {
	assert.NoError(t, validProvision().ValidateProvision())

	cfg := GetDefaultConfig()
	cfg.Provision.MaxRetries = 0
	cfg.Provision.Sample = "other"
	err := cfg.ValidateProvision()

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["provision.agentDisplayName"])
	assert.True(t, fields["provision.webhookUri"])
	assert.True(t, fields["provision.maxRetries"])
	assert.True(t, fields["provision.sample"])
	assert.Contains(t, err.Error(), "validation failed:")
}

func TestValidateProvision_LogLevel(t *testing.T) {
	cfg := validProvision()
	cfg.LogLevel = "loud"

	err := cfg.ValidateProvision()

	assert.EqualError(t, err, "field 'logLevel': must be one of: debug, info, warn, warning, error")
}

func TestValidateProvision_LogLevelIgnoresCase(t *testing.T) {
	for _, level := range []string{"DEBUG", "Warn", " error "} {
		cfg := validProvision()
		cfg.LogLevel = level
		assert.NoError(t, cfg.ValidateProvision(), level)
		assert.NoError(t, cfg.ValidateRestore(), level)
	}
}

func TestValidateRestore(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.NoError(t, cfg.ValidateRestore())

	cfg.Restore.AgentURI = "gs://a"
	cfg.Restore.AgentURIFile = "agent_uri.json"
	assert.ErrorContains(t, cfg.ValidateRestore(), "cannot be combined")
}

func TestValidateLiveCheck(t *testing.T) {
	cfg := GetDefaultConfig()
	err := cfg.ValidateLiveCheck()
	assert.ErrorContains(t, err, "projectId")
	assert.ErrorContains(t, err, "liveCheck.function")

	cfg.ProjectID = "p"
	cfg.LiveCheck.Function = "webhook"
	assert.NoError(t, cfg.ValidateLiveCheck())
}

func TestValidationErrorFormatting(t *testing.T) {
	assert.Equal(t, "plain", ValidationError{Message: "plain"}.Error())
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
	assert.False(t, ValidationErrors{}.HasErrors())
}
