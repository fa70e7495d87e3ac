package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cxkit/internal/auth"
	"cxkit/internal/config"
)

// APIErrorType categorizes a failed Google Cloud call.
type APIErrorType int

const (
	// APIErrorUnknown is an unclassified failure.
	APIErrorUnknown APIErrorType = iota
	// APIErrorCredentials means no usable credentials or project were found.
	APIErrorCredentials
	// APIErrorPermission means the caller lacks an IAM permission or the
	// API is disabled on the project.
	APIErrorPermission
	// APIErrorUnauthenticated means the credentials were rejected.
	APIErrorUnauthenticated
	// APIErrorQuota means a quota or rate limit was hit.
	APIErrorQuota
	// APIErrorUnavailable means the service could not be reached.
	APIErrorUnavailable
	// APIErrorTimeout means the call ran past its deadline.
	APIErrorTimeout
)

// String returns a human-readable name for the error type.
func (t APIErrorType) String() string {
	switch t {
	case APIErrorCredentials:
		return "Credentials error"
	case APIErrorPermission:
		return "Permission denied"
	case APIErrorUnauthenticated:
		return "Authentication failed"
	case APIErrorQuota:
		return "Quota exceeded"
	case APIErrorUnavailable:
		return "Service unavailable"
	case APIErrorTimeout:
		return "Deadline exceeded"
	default:
		return "API error"
	}
}

// APIError wraps a failed Google Cloud call with its category.
type APIError struct {
	Type   APIErrorType
	Reason error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Type, e.Reason)
}

func (e *APIError) Unwrap() error {
	return e.Reason
}

// Hint returns what the user can do about the error, or "".
func (e *APIError) Hint() string {
	switch e.Type {
	case APIErrorCredentials:
		return "Run 'gcloud auth application-default login' or point SVC_ACCOUNT_FILE at a key file, and set PROJECT_ID."
	case APIErrorPermission:
		return "Check that the Dialogflow API is enabled and the caller has the Dialogflow API Admin role."
	case APIErrorUnauthenticated:
		return "Refresh your credentials with 'gcloud auth application-default login'."
	case APIErrorQuota:
		return "Set QUOTA_PROJECT_ID to a project with Dialogflow quota, or retry later."
	case APIErrorUnavailable, APIErrorTimeout:
		return "Check your network connection and the --location flag, then retry."
	default:
		return ""
	}
}

// ClassifyAPIError categorizes err. It returns nil for nil.
func ClassifyAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	if errors.Is(err, auth.ErrNoProject) || isCredentialsError(err) {
		return &APIError{Type: APIErrorCredentials, Reason: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Type: APIErrorTimeout, Reason: err}
	}

	switch grpcCode(err) {
	case codes.PermissionDenied:
		return &APIError{Type: APIErrorPermission, Reason: err}
	case codes.Unauthenticated:
		return &APIError{Type: APIErrorUnauthenticated, Reason: err}
	case codes.ResourceExhausted:
		return &APIError{Type: APIErrorQuota, Reason: err}
	case codes.Unavailable:
		return &APIError{Type: APIErrorUnavailable, Reason: err}
	case codes.DeadlineExceeded:
		return &APIError{Type: APIErrorTimeout, Reason: err}
	}
	return &APIError{Type: APIErrorUnknown, Reason: err}
}

// grpcCode finds the first gRPC status in err's chain.
func grpcCode(err error) codes.Code {
	var withStatus interface{ GRPCStatus() *status.Status }
	if errors.As(err, &withStatus) {
		return withStatus.GRPCStatus().Code()
	}
	return codes.Unknown
}

func isCredentialsError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "could not find default credentials") ||
		strings.Contains(msg, "google: error getting credentials") ||
		strings.Contains(msg, "credentials file")
}

// Describe renders err for the terminal, adding configuration details or a
// hint when one applies.
func Describe(err error) string {
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.DetailedError()
	}
	var invalid config.ValidationErrors
	if errors.As(err, &invalid) {
		return "Invalid configuration:\n" + invalid.Error()
	}
	if apiErr := ClassifyAPIError(err); apiErr.Type != APIErrorUnknown {
		return fmt.Sprintf("Error: %v\n\n%s", err, apiErr.Hint())
	}
	return fmt.Sprintf("Error: %v", err)
}
