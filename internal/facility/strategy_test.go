package facility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// lastFit exhausts the scan and keeps the final candidate, the opposite of
// FirstFit. Used to prove the strategy seam is substitutable.
type lastFit struct{}

func (lastFit) Select(next func() (SpotRef, bool)) (SpotRef, bool) {
	var chosen SpotRef
	found := false
	for {
		ref, ok := next()
		if !ok {
			return chosen, found
		}
		chosen = ref
		found = true
	}
}

func TestFirstFitTakesScanOrder(t *testing.T) {
	f := NewFacility(FirstFit{})
	f.AddFloor()
	f.AddFloor()
	require.NoError(t, f.AddSpot(0, 101, KindCar))
	require.NoError(t, f.AddSpot(0, 102, KindCar))
	require.NoError(t, f.AddSpot(1, 201, KindCar))

	ticket, err := f.Park("DL-001", KindCar, time.Now())
	require.NoError(t, err)
	require.Equal(t, 101, ticket.SpotID)
}

func TestAlternateStrategyIsSubstitutable(t *testing.T) {
	f := NewFacility(lastFit{})
	f.AddFloor()
	f.AddFloor()
	require.NoError(t, f.AddSpot(0, 101, KindCar))
	require.NoError(t, f.AddSpot(0, 102, KindCar))
	require.NoError(t, f.AddSpot(1, 201, KindCar))

	ticket, err := f.Park("DL-001", KindCar, time.Now())
	require.NoError(t, err)
	require.Equal(t, 201, ticket.SpotID)
}

func TestNilStrategyDefaultsToFirstFit(t *testing.T) {
	f := NewFacility(nil)
	f.AddFloor()
	require.NoError(t, f.AddSpot(0, 101, KindCar))
	require.NoError(t, f.AddSpot(0, 102, KindCar))

	ticket, err := f.Park("DL-001", KindCar, time.Now())
	require.NoError(t, err)
	require.Equal(t, 101, ticket.SpotID)
}
