package provision_test

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/dialogflow/cx/apiv3/cxpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cxkit/internal/provision"
	"cxkit/internal/testing/fakecx"
)

const parent = "projects/p/locations/global/agents/a"

func TestEnsure_CreatesWhenAbsent(t *testing.T) {
	store := fakecx.NewStore[*cxpb.Webhook]("webhooks")

	out, err := provision.Ensure(context.Background(), store, parent, provision.BuildWebhook("Webhook 1", "https://example.com"))

	require.NoError(t, err)
	assert.Equal(t, provision.Created, out.Status)
	assert.True(t, out.Ok())
	assert.Equal(t, "Webhook 1", out.Handle.GetDisplayName())
	assert.NotEmpty(t, out.Handle.GetName())
	assert.Equal(t, fakecx.Calls{Create: 1}, store.Calls())
}

func TestEnsure_FindsExistingOnConflict(t *testing.T) {
	store := fakecx.NewStore[*cxpb.Webhook]("webhooks")
	ctx := context.Background()
	_, err := store.Create(ctx, parent, provision.BuildWebhook("Other", "https://other"))
	require.NoError(t, err)
	first, err := provision.Ensure(ctx, store, parent, provision.BuildWebhook("Webhook 1", "https://example.com"))
	require.NoError(t, err)

	second, err := provision.Ensure(ctx, store, parent, provision.BuildWebhook("Webhook 1", "https://example.com"))

	require.NoError(t, err)
	assert.Equal(t, provision.Found, second.Status)
	assert.Equal(t, first.Handle.GetName(), second.Handle.GetName())
	assert.Equal(t, 2, store.Len(parent), "no duplicate may be created")
	calls := store.Calls()
	assert.Equal(t, 1, calls.List)
	assert.Equal(t, 1, calls.Get)
}

func TestEnsure_NotFoundLeavesNoHandle(t *testing.T) {
	store := fakecx.NewStore[*cxpb.Intent]("intents")
	ctx := context.Background()
	_, err := provision.Ensure(ctx, store, parent, provision.BuildIntent("greet", nil, nil))
	require.NoError(t, err)
	store.HideFromList = true

	out, err := provision.Ensure(ctx, store, parent, provision.BuildIntent("greet", nil, nil))

	require.NoError(t, err, "a missed lookup is not an error")
	assert.Equal(t, provision.NotFound, out.Status)
	assert.False(t, out.Ok())
	assert.Nil(t, out.Handle)
	assert.Equal(t, 0, store.Calls().Get)
}

func TestEnsure_OtherErrorsPropagate(t *testing.T) {
	store := fakecx.NewStore[*cxpb.Page]("pages")
	denied := errors.New("permission denied")
	store.CreateErr = denied

	_, err := provision.Ensure(context.Background(), store, parent, provision.BuildPage("Main Page", nil))

	require.ErrorIs(t, err, denied)
	assert.Equal(t, 0, store.Calls().List, "only conflicts trigger discovery")
}

// failingGet wraps a store and fails Get, to check fetch errors surface.
type failingGet struct {
	*fakecx.Store[*cxpb.Page]
	err error
}

func (f failingGet) Get(ctx context.Context, name string) (*cxpb.Page, error) {
	return nil, f.err
}

func TestEnsure_GetErrorAfterConflict(t *testing.T) {
	store := fakecx.NewStore[*cxpb.Page]("pages")
	ctx := context.Background()
	_, err := store.Create(ctx, parent, provision.BuildPage("Main Page", nil))
	require.NoError(t, err)
	unavailable := errors.New("unavailable")

	_, err = provision.Ensure[*cxpb.Page](ctx, failingGet{store, unavailable}, parent, provision.BuildPage("Main Page", nil))

	assert.ErrorIs(t, err, unavailable)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "created", provision.Created.String())
	assert.Equal(t, "found", provision.Found.String())
	assert.Equal(t, "not found", provision.NotFound.String())
}

func TestNotCreatedError(t *testing.T) {
	err := &provision.NotCreatedError{Kind: "agent"}
	assert.Equal(t, "agent not yet created", err.Error())
	assert.ErrorIs(t, err, &provision.NotCreatedError{})
}
