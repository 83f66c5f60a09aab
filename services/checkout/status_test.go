package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookedai/models"
)

func TestMemoryStatusTrackerMissingReadsNil(t *testing.T) {
	tracker := NewMemoryStatusTracker()

	status, err := tracker.Get(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestMemoryStatusTrackerSetGet(t *testing.T) {
	tracker := NewMemoryStatusTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindHotel, Status: models.StatePending,
	}))

	status, err := tracker.Get(ctx, "ctx1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, status.Status)
	assert.False(t, status.CreatedAt.IsZero())
	assert.False(t, status.UpdatedAt.IsZero())
}

func TestMemoryStatusTrackerTerminalStatesAreFrozen(t *testing.T) {
	tracker := NewMemoryStatusTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindHotel, Status: models.StatePending,
	}))
	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindHotel, Status: models.StatePaid, Amount: "100.00",
	}))

	// A late pending write must not resurrect a settled checkout.
	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindHotel, Status: models.StatePending,
	}))

	status, err := tracker.Get(ctx, "ctx1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaid, status.Status)
	assert.Equal(t, "100.00", status.Amount)
}

func TestMemoryStatusTrackerPreservesCreatedAt(t *testing.T) {
	tracker := NewMemoryStatusTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindFlight, Status: models.StatePending,
	}))
	first, err := tracker.Get(ctx, "ctx1")
	require.NoError(t, err)

	require.NoError(t, tracker.Set(ctx, models.CheckoutStatus{
		CtxID: "ctx1", Kind: models.KindFlight, Status: models.StatePaid,
	}))
	second, err := tracker.Get(ctx, "ctx1")
	require.NoError(t, err)

	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
}

func TestCheckoutStateTerminal(t *testing.T) {
	assert.False(t, models.StatePending.Terminal())
	assert.False(t, models.StateUnknown.Terminal())
	assert.True(t, models.StatePaid.Terminal())
	assert.True(t, models.StateRejected.Terminal())
	assert.True(t, models.StateExpired.Terminal())
	assert.True(t, models.StateCapturedUnbooked.Terminal())
}
