package dialogflow

import (
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cxkit/internal/provision"
	"cxkit/internal/testrun"
)

// nluModelMissing is the fragment the service puts in a NotFound status when
// a flow's NLU model has not finished training.
const nluModelMissing = "NLU model for flow"

// classify maps gRPC status codes onto the sentinels the provisioning and
// test-run packages match on. The original error stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %w", provision.ErrAlreadyExists, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %w", provision.ErrNotFound, err)
	default:
		return err
	}
}

// classifyRun is classify for test runs, where a missing NLU model means
// training has not caught up yet.
func classifyRun(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok && s.Code() == codes.NotFound && strings.Contains(s.Message(), nluModelMissing) {
		return fmt.Errorf("%w: %w", testrun.ErrModelNotReady, err)
	}
	return classify(err)
}
