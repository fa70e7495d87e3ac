package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, entityType string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", entityType),
		}
	}
	return nil
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

func (ve *ValidationErrors) check(err error) {
	if v, ok := err.(ValidationError); ok {
		*ve = append(*ve, v)
	}
}

func (ve ValidationErrors) orNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func (c Config) validateCommon(errs *ValidationErrors) {
	errs.check(ValidateRequired("location", c.Location, "every command"))
	errs.check(ValidateOneOf("logLevel", strings.ToLower(strings.TrimSpace(c.LogLevel)), []string{"debug", "info", "warn", "warning", "error"}))
}

// ValidateProvision checks the settings the provision command needs.
func (c Config) ValidateProvision() error {
	var errs ValidationErrors
	c.validateCommon(&errs)
	errs.check(ValidateRequired("provision.agentDisplayName", c.Provision.AgentDisplayName, "provision"))
	errs.check(ValidateRequired("provision.webhookUri", c.Provision.WebhookURI, "provision"))
	errs.check(ValidateOneOf("provision.sample", c.Provision.Sample, []string{SampleWebhook, SampleSessionParam}))
	if c.Provision.Wait < 0 {
		errs.Add("provision.wait", "must not be negative", c.Provision.Wait)
	}
	if c.Provision.MaxRetries < 1 {
		errs.Add("provision.maxRetries", "must be at least 1", c.Provision.MaxRetries)
	}
	return errs.orNil()
}

// ValidateRestore checks the settings the restore command needs.
func (c Config) ValidateRestore() error {
	var errs ValidationErrors
	c.validateCommon(&errs)
	if c.Restore.AgentURI != "" && c.Restore.AgentURIFile != "" {
		errs.Add("restore.agentUri", "cannot be combined with restore.agentUriFile")
	}
	return errs.orNil()
}

// ValidateLiveCheck checks the settings the webhook-check command needs.
func (c Config) ValidateLiveCheck() error {
	var errs ValidationErrors
	errs.check(ValidateRequired("projectId", c.ProjectID, "webhook-check"))
	errs.check(ValidateRequired("liveCheck.function", c.LiveCheck.Function, "webhook-check"))
	errs.check(ValidateRequired("liveCheck.location", c.LiveCheck.Location, "webhook-check"))
	return errs.orNil()
}
