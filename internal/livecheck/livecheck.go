// Package livecheck verifies that a deployed webhook Cloud Function answers
// with the fulfillment format the agent expects.
package livecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	functions "cloud.google.com/go/functions/apiv1"
	"cloud.google.com/go/functions/apiv1/functionspb"

	"cxkit/internal/auth"
	"cxkit/internal/webhook"
	"cxkit/pkg/logging"
)

const (
	DefaultLocation = "us-central1"
	ExampleText     = "example_text"
	ExampleTag      = "example_tag"
)

// Caller invokes a Cloud Function with a payload and returns its result.
type Caller interface {
	CallFunction(ctx context.Context, name, data string) (string, error)
}

// FunctionName returns the full resource name of a Cloud Function.
func FunctionName(projectID, location, function string) string {
	return fmt.Sprintf("projects/%s/locations/%s/functions/%s", projectID, location, function)
}

// MismatchError reports a webhook that answered with the wrong text.
type MismatchError struct {
	Want, Got string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("webhook replied %q, want %q", e.Got, e.Want)
}

// ErrFunctionFailed is returned when the function itself reported an error.
var ErrFunctionFailed = errors.New("function call failed")

// Check sends a webhook request for text and tag to the function and
// compares the reply with what the webhook should answer.
func Check(ctx context.Context, caller Caller, function, text, tag string) (string, error) {
	payload, err := json.Marshal(webhook.NewRequest(tag, text))
	if err != nil {
		return "", fmt.Errorf("encoding webhook request: %w", err)
	}
	logging.Info("LiveCheck", "Calling %s with tag %q", function, tag)

	result, err := caller.CallFunction(ctx, function, string(payload))
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", function, err)
	}

	var resp webhook.Response
	if err := json.Unmarshal([]byte(result), &resp); err != nil {
		return "", fmt.Errorf("decoding reply from %s: %w", function, err)
	}
	got := webhook.ExtractText(resp)
	want := webhook.Reply(text, tag)
	if got != want {
		return got, &MismatchError{Want: want, Got: got}
	}
	return got, nil
}

// FunctionsCaller calls functions through the Cloud Functions v1 API.
type FunctionsCaller struct {
	client *functions.CloudFunctionsClient
}

func NewFunctionsCaller(ctx context.Context, creds *auth.Credentials) (*FunctionsCaller, error) {
	client, err := functions.NewCloudFunctionsClient(ctx, creds.ClientOptions("")...)
	if err != nil {
		return nil, fmt.Errorf("creating cloud functions client: %w", err)
	}
	return &FunctionsCaller{client: client}, nil
}

func (c *FunctionsCaller) CallFunction(ctx context.Context, name, data string) (string, error) {
	resp, err := c.client.CallFunction(ctx, &functionspb.CallFunctionRequest{Name: name, Data: data})
	if err != nil {
		return "", err
	}
	if resp.GetError() != "" {
		return "", fmt.Errorf("%w: execution %s: %s", ErrFunctionFailed, resp.GetExecutionId(), resp.GetError())
	}
	return resp.GetResult(), nil
}

func (c *FunctionsCaller) Close() error {
	return c.client.Close()
}
