package cmd

import (
	"context"

	"cxkit/internal/auth"
	"cxkit/internal/config"
	"cxkit/internal/dialogflow"
	"cxkit/internal/provision"
	"cxkit/internal/sample"
)

// cxBackend is everything a command needs from the Dialogflow CX API.
type cxBackend struct {
	creds    *auth.Credentials
	services sample.Services
	clients  *dialogflow.Clients
}

func (b *cxBackend) Close() error {
	return b.clients.Close()
}

// openCX resolves credentials and opens the CX clients for cfg's location.
func openCX(ctx context.Context, cfg config.Config) (*cxBackend, error) {
	creds, err := auth.Resolve(ctx, credentialOptions(cfg))
	if err != nil {
		return nil, err
	}
	clients, err := dialogflow.NewClients(ctx, creds, cfg.Location, provision.DefaultLanguageCode)
	if err != nil {
		return nil, err
	}
	return &cxBackend{
		creds:   creds,
		clients: clients,
		services: sample.Services{
			Agents:    clients.Agents(),
			Webhooks:  clients.Webhooks(),
			Intents:   clients.Intents(),
			Pages:     clients.Pages(),
			TestCases: clients.TestCases(),
			Flows:     clients.Flows(),
			Sessions:  clients.Sessions(),
			Restorer:  clients.Restorer(),
		},
	}, nil
}

func credentialOptions(cfg config.Config) auth.Options {
	return auth.Options{
		ProjectID:       cfg.ProjectID,
		QuotaProjectID:  cfg.QuotaProjectID,
		CredentialsFile: cfg.CredentialsFile,
	}
}
