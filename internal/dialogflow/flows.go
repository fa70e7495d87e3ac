package dialogflow

import (
	"context"

	cx "cloud.google.com/go/dialogflow/cx/apiv3"
	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"cxkit/pkg/logging"
)

// Flows implements provision.FlowAPI.
type Flows struct {
	client       *cx.FlowsClient
	languageCode string
}

func (f *Flows) GetFlow(ctx context.Context, name string) (*cxpb.Flow, error) {
	got, err := f.client.GetFlow(ctx, &cxpb.GetFlowRequest{Name: name, LanguageCode: f.languageCode})
	return got, classify(err)
}

func (f *Flows) UpdateFlow(ctx context.Context, flow *cxpb.Flow, paths ...string) (*cxpb.Flow, error) {
	got, err := f.client.UpdateFlow(ctx, &cxpb.UpdateFlowRequest{
		Flow:         flow,
		UpdateMask:   &fieldmaskpb.FieldMask{Paths: paths},
		LanguageCode: f.languageCode,
	})
	return got, classify(err)
}

// TrainFlow starts training and waits for the operation to finish.
func (f *Flows) TrainFlow(ctx context.Context, name string) error {
	op, err := f.client.TrainFlow(ctx, &cxpb.TrainFlowRequest{Name: name})
	if err != nil {
		return classify(err)
	}
	logging.Debug(subsystem, "Training flow %s (operation %s)", name, op.Name())
	return classify(op.Wait(ctx))
}
