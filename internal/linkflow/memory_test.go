package linkflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialkit-dev/identity/domain"
	"github.com/socialkit-dev/identity/internal/linkflow"
)

func TestMemoryStore_TakeIsOneShot(t *testing.T) {
	store := linkflow.NewMemoryStore(0)
	defer store.Stop()

	ctx := context.Background()
	pending := &linkflow.PendingLink{UserID: "user-1", Provider: domain.ProviderGoogle}
	require.NoError(t, store.Put(ctx, "state-abc", pending))

	got, err := store.Take(ctx, "state-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, domain.ProviderGoogle, got.Provider)

	// A flow id is only good once.
	_, err = store.Take(ctx, "state-abc")
	assert.ErrorIs(t, err, linkflow.ErrFlowNotFound)
}

func TestMemoryStore_UnknownFlow(t *testing.T) {
	store := linkflow.NewMemoryStore(0)
	defer store.Stop()

	_, err := store.Take(context.Background(), "never-stored")
	assert.ErrorIs(t, err, linkflow.ErrFlowNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := linkflow.NewMemoryStore(20 * time.Millisecond)
	defer store.Stop()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "state-exp", &linkflow.PendingLink{UserID: "u"}))

	time.Sleep(60 * time.Millisecond)

	_, err := store.Take(ctx, "state-exp")
	assert.ErrorIs(t, err, linkflow.ErrFlowNotFound)
}
