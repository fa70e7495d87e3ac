package provision

import (
	"context"
	"fmt"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"

	"cxkit/pkg/logging"
)

// TransitionRoutesField is the update mask path for a flow's routes.
const TransitionRoutesField = "transition_routes"

// FlowAPI is the part of the flows service the sample needs. Flows are not
// created by this package; the agent's start flow is adopted as is.
type FlowAPI interface {
	GetFlow(ctx context.Context, name string) (*cxpb.Flow, error)
	UpdateFlow(ctx context.Context, flow *cxpb.Flow, paths ...string) (*cxpb.Flow, error)
	TrainFlow(ctx context.Context, name string) error
}

// FlowDelegator manages routes on the agent's start flow.
type FlowDelegator struct {
	api   FlowAPI
	agent *AgentDelegator
	flow  *cxpb.Flow
}

func NewFlowDelegator(api FlowAPI, agent *AgentDelegator) *FlowDelegator {
	return &FlowDelegator{api: api, agent: agent}
}

// Initialize fetches the start flow of the agent.
func (d *FlowDelegator) Initialize(ctx context.Context) error {
	name, err := d.agent.StartFlow()
	if err != nil {
		return err
	}
	flow, err := d.api.GetFlow(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching start flow %s: %w", name, err)
	}
	d.flow = flow
	return nil
}

// Flow returns the last fetched or updated start flow.
func (d *FlowDelegator) Flow() (*cxpb.Flow, error) {
	if d.flow == nil {
		return nil, &NotCreatedError{Kind: "flow"}
	}
	return d.flow, nil
}

// AppendTransitionRoute adds a route that moves to targetPage when intent
// matches. The flow is re-read first so concurrent edits made in the console
// are kept, and a route that is already present is not added again.
func (d *FlowDelegator) AppendTransitionRoute(ctx context.Context, intent, targetPage string) error {
	name, err := d.agent.StartFlow()
	if err != nil {
		return err
	}
	flow, err := d.api.GetFlow(ctx, name)
	if err != nil {
		return fmt.Errorf("fetching flow %s: %w", name, err)
	}

	if HasTransitionRoute(flow, intent, targetPage) {
		logging.Debug(subsystem, "Flow %s already routes %s to %s", name, intent, targetPage)
		d.flow = flow
		return nil
	}

	flow.TransitionRoutes = append(flow.TransitionRoutes, &cxpb.TransitionRoute{
		Intent: intent,
		Target: &cxpb.TransitionRoute_TargetPage{TargetPage: targetPage},
	})
	updated, err := d.api.UpdateFlow(ctx, flow, TransitionRoutesField)
	if err != nil {
		return fmt.Errorf("updating flow %s: %w", name, err)
	}
	logging.Info(subsystem, "Added route %s -> %s on flow %s", intent, targetPage, name)
	d.flow = updated
	return nil
}

// Train retrains the start flow's NLU model and waits for completion.
func (d *FlowDelegator) Train(ctx context.Context) error {
	name, err := d.agent.StartFlow()
	if err != nil {
		return err
	}
	if err := d.api.TrainFlow(ctx, name); err != nil {
		return fmt.Errorf("training flow %s: %w", name, err)
	}
	return nil
}

// HasTransitionRoute reports whether flow already routes intent to targetPage.
func HasTransitionRoute(flow *cxpb.Flow, intent, targetPage string) bool {
	for _, route := range flow.GetTransitionRoutes() {
		if route.GetIntent() == intent && route.GetTargetPage() == targetPage {
			return true
		}
	}
	return false
}
