package dialogflow

import (
	"errors"
	"testing"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"cxkit/internal/provision"
)

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "global-dialogflow.googleapis.com:443", Endpoint(""))
	assert.Equal(t, "global-dialogflow.googleapis.com:443", Endpoint("global"))
	assert.Equal(t, "us-central1-dialogflow.googleapis.com:443", Endpoint("us-central1"))
}

type sliceIterator struct {
	items []*cxpb.Agent
	err   error
}

func (s *sliceIterator) Next() (*cxpb.Agent, error) {
	if len(s.items) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, iterator.Done
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, nil
}

func TestDrain(t *testing.T) {
	it := &sliceIterator{items: []*cxpb.Agent{{Name: "a"}, {Name: "b"}}}

	got, err := drain[*cxpb.Agent](it)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].GetName())
}

func TestDrainClassifiesErrors(t *testing.T) {
	it := &sliceIterator{items: []*cxpb.Agent{{Name: "a"}}, err: status.Error(codes.NotFound, "parent gone")}

	got, err := drain[*cxpb.Agent](it)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, provision.ErrNotFound)
}

func TestTestCaseParent(t *testing.T) {
	parent, err := testCaseParent("projects/p/locations/global/agents/a/testCases/123")
	require.NoError(t, err)
	assert.Equal(t, "projects/p/locations/global/agents/a", parent)

	_, err = testCaseParent("projects/p/agents/a")
	assert.Error(t, err)
}

func TestCloseWithoutClients(t *testing.T) {
	c := &Clients{}
	assert.NoError(t, c.Close())
}

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

func TestCloseJoinsErrors(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	c := &Clients{opened: []interface{ Close() error }{failingCloser{first}, failingCloser{nil}, failingCloser{second}}}

	err := c.Close()

	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.NoError(t, c.Close(), "clients are closed once")
}
