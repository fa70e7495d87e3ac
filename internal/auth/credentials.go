// Package auth resolves Google Cloud credentials for the API clients.
//
// Credentials come from a service account key file when one is given and
// from Application Default Credentials otherwise. The project and the quota
// project fall back to what the credentials carry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"cxkit/pkg/logging"
)

// CloudPlatformScope is requested for every client.
const CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ErrNoProject is returned when neither the caller nor the credentials name a
// project.
var ErrNoProject = errors.New("no project id: set --project-id or PROJECT_ID")

// Options selects where credentials come from.
type Options struct {
	ProjectID       string
	QuotaProjectID  string
	CredentialsFile string
}

// Credentials are resolved credentials plus the project they act on.
type Credentials struct {
	ProjectID      string
	QuotaProjectID string

	google *google.Credentials
}

// Resolve loads credentials according to opts.
func Resolve(ctx context.Context, opts Options) (*Credentials, error) {
	var (
		creds *google.Credentials
		err   error
	)
	if opts.CredentialsFile != "" {
		creds, err = fromFile(ctx, opts.CredentialsFile)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, CloudPlatformScope)
		if err != nil {
			err = fmt.Errorf("finding default credentials: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return newCredentials(creds, opts)
}

func fromFile(ctx context.Context, path string) (*google.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", path, err)
	}
	logging.Debug("Auth", "Loaded credentials from %s", path)
	return creds, nil
}

func newCredentials(creds *google.Credentials, opts Options) (*Credentials, error) {
	project := opts.ProjectID
	if project == "" {
		project = creds.ProjectID
	}
	if project == "" {
		return nil, ErrNoProject
	}
	quota := opts.QuotaProjectID
	if quota == "" {
		quota = project
	}
	logging.Debug("Auth", "Using project %s (quota project %s)", project, quota)
	return &Credentials{ProjectID: project, QuotaProjectID: quota, google: creds}, nil
}

// ClientOptions returns the options every API client is built with. An empty
// endpoint keeps the client library's default.
func (c *Credentials) ClientOptions(endpoint string) []option.ClientOption {
	opts := []option.ClientOption{
		option.WithCredentials(c.google),
		option.WithQuotaProject(c.QuotaProjectID),
	}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}
