package dialogflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cxkit/internal/provision"
	"cxkit/internal/testrun"
)

const modelMissingMsg = "com.google.apps.framework.request.NotFoundException: NLU model for flow '00000000-0000-0000-0000-000000000000' does not exist. Please try again after retraining the flow."

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"already exists", status.Error(codes.AlreadyExists, "agent exists"), provision.ErrAlreadyExists},
		{"not found", status.Error(codes.NotFound, "no such agent"), provision.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "original error stays in the chain")
			assert.Equal(t, status.Code(tt.err), status.Code(got))
		})
	}
}

func TestClassifyPassesThrough(t *testing.T) {
	denied := status.Error(codes.PermissionDenied, "denied")
	assert.Equal(t, denied, classify(denied))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
	assert.NoError(t, classify(nil))
}

func TestClassifyRun(t *testing.T) {
	notReady := classifyRun(status.Error(codes.NotFound, modelMissingMsg))
	assert.ErrorIs(t, notReady, testrun.ErrModelNotReady)
	assert.NotErrorIs(t, notReady, provision.ErrNotFound)

	missing := classifyRun(status.Error(codes.NotFound, "test case not found"))
	assert.ErrorIs(t, missing, provision.ErrNotFound)
	assert.NotErrorIs(t, missing, testrun.ErrModelNotReady)

	assert.NoError(t, classifyRun(nil))
}
