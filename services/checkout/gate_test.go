package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGateConsumeOnce(t *testing.T) {
	gate := NewMemoryGate()
	ctx := context.Background()

	tripped, err := gate.ConsumeIfTripped(ctx, GateHotelSearch)
	require.NoError(t, err)
	assert.False(t, tripped, "untripped gate must not consume")

	require.NoError(t, gate.Trip(ctx, GateHotelSearch))

	tripped, err = gate.ConsumeIfTripped(ctx, GateHotelSearch)
	require.NoError(t, err)
	assert.True(t, tripped)

	tripped, err = gate.ConsumeIfTripped(ctx, GateHotelSearch)
	require.NoError(t, err)
	assert.False(t, tripped, "gate must be one-shot")
}

func TestMemoryGateTripIsIdempotent(t *testing.T) {
	gate := NewMemoryGate()
	ctx := context.Background()

	require.NoError(t, gate.Trip(ctx, GateFlightSearch))
	require.NoError(t, gate.Trip(ctx, GateFlightSearch))

	tripped, err := gate.ConsumeIfTripped(ctx, GateFlightSearch)
	require.NoError(t, err)
	assert.True(t, tripped)

	tripped, err = gate.ConsumeIfTripped(ctx, GateFlightSearch)
	require.NoError(t, err)
	assert.False(t, tripped, "double trip must still grant a single consume")
}

func TestMemoryGateKindsAreIndependent(t *testing.T) {
	gate := NewMemoryGate()
	ctx := context.Background()

	require.NoError(t, gate.Trip(ctx, GateRoomRates))

	tripped, err := gate.ConsumeIfTripped(ctx, GateHotelSearch)
	require.NoError(t, err)
	assert.False(t, tripped)

	tripped, err = gate.ConsumeIfTripped(ctx, GateRoomRates)
	require.NoError(t, err)
	assert.True(t, tripped)
}

func TestMemoryGateConcurrentSingleConsumption(t *testing.T) {
	gate := NewMemoryGate()
	ctx := context.Background()
	require.NoError(t, gate.Trip(ctx, GateFlightSearch))

	const consumers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins int

	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tripped, err := gate.ConsumeIfTripped(ctx, GateFlightSearch)
			assert.NoError(t, err)
			if tripped {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one consumer may observe the trip")
}
