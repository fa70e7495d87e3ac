// Package dialogflow adapts the Dialogflow CX v3 client library to the
// interfaces the provisioning and test-run packages are written against.
//
// Every adapter drains list iterators into slices and classifies gRPC status
// codes into the sentinels provision and testrun match on.
package dialogflow

import (
	"context"
	"errors"
	"fmt"

	cx "cloud.google.com/go/dialogflow/cx/apiv3"

	"cxkit/internal/auth"
	"cxkit/pkg/logging"
)

const subsystem = "Dialogflow"

// Endpoint returns the API endpoint for location, global included. An empty
// location means global.
func Endpoint(location string) string {
	if location == "" {
		location = "global"
	}
	return fmt.Sprintf("%s-dialogflow.googleapis.com:443", location)
}

// Clients bundles one client per CX service the tool talks to.
type Clients struct {
	agents    *cx.AgentsClient
	webhooks  *cx.WebhooksClient
	intents   *cx.IntentsClient
	pages     *cx.PagesClient
	flows     *cx.FlowsClient
	testCases *cx.TestCasesClient
	sessions  *cx.SessionsClient

	opened       []interface{ Close() error }
	languageCode string
}

// NewClients dials every service for location with creds.
func NewClients(ctx context.Context, creds *auth.Credentials, location, languageCode string) (*Clients, error) {
	opts := creds.ClientOptions(Endpoint(location))
	c := &Clients{languageCode: languageCode}

	var err error
	if c.agents, err = cx.NewAgentsClient(ctx, opts...); err != nil {
		return nil, fmt.Errorf("creating agents client: %w", err)
	}
	c.opened = append(c.opened, c.agents)
	if c.webhooks, err = cx.NewWebhooksClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating webhooks client: %w", err))
	}
	c.opened = append(c.opened, c.webhooks)
	if c.intents, err = cx.NewIntentsClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating intents client: %w", err))
	}
	c.opened = append(c.opened, c.intents)
	if c.pages, err = cx.NewPagesClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating pages client: %w", err))
	}
	c.opened = append(c.opened, c.pages)
	if c.flows, err = cx.NewFlowsClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating flows client: %w", err))
	}
	c.opened = append(c.opened, c.flows)
	if c.testCases, err = cx.NewTestCasesClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating test cases client: %w", err))
	}
	c.opened = append(c.opened, c.testCases)
	if c.sessions, err = cx.NewSessionsClient(ctx, opts...); err != nil {
		return nil, c.closeWith(fmt.Errorf("creating sessions client: %w", err))
	}
	c.opened = append(c.opened, c.sessions)

	logging.Debug(subsystem, "Connected to Dialogflow CX in %s", location)
	return c, nil
}

func (c *Clients) closeWith(err error) error {
	if cerr := c.Close(); cerr != nil {
		logging.Warn(subsystem, "Closing clients after failed setup: %v", cerr)
	}
	return err
}

// Close closes every client that was opened.
func (c *Clients) Close() error {
	var errs []error
	for _, cl := range c.opened {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.opened = nil
	return errors.Join(errs...)
}

// Agents returns the agent kind adapter.
func (c *Clients) Agents() *Agents { return &Agents{client: c.agents} }

// Webhooks returns the webhook kind adapter.
func (c *Clients) Webhooks() *Webhooks { return &Webhooks{client: c.webhooks} }

// Intents returns the intent kind adapter.
func (c *Clients) Intents() *Intents {
	return &Intents{client: c.intents, languageCode: c.languageCode}
}

// Pages returns the page kind adapter.
func (c *Clients) Pages() *Pages {
	return &Pages{client: c.pages, languageCode: c.languageCode}
}

// Flows returns the flow adapter.
func (c *Clients) Flows() *Flows {
	return &Flows{client: c.flows, languageCode: c.languageCode}
}

// TestCases returns the test case kind adapter, which also runs test cases.
func (c *Clients) TestCases() *TestCases { return &TestCases{client: c.testCases} }

// Sessions returns the session adapter.
func (c *Clients) Sessions() *Sessions { return &Sessions{client: c.sessions} }

// Restorer returns the agent restore adapter.
func (c *Clients) Restorer() *Restorer { return &Restorer{client: c.agents} }
