package facility

import (
	"context"
	"testing"
	"time"
)

func TestInstrumentedFacilityIntegration(t *testing.T) {
	telemetry, err := NewTelemetryProvider()
	if err != nil {
		t.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			t.Errorf("Failed to shutdown telemetry: %v", err)
		}
	}()

	ifa, err := NewInstrumentedFacility(FirstFit{}, telemetry)
	if err != nil {
		t.Fatalf("Failed to create instrumented facility: %v", err)
	}

	ctx := context.Background()
	now := time.Now()

	floor := ifa.AddFloor(ctx)
	if floor != 0 {
		t.Errorf("Expected floor index 0, got %d", floor)
	}

	if err := ifa.AddSpot(ctx, 0, 101, KindCar); err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	}

	ticket, err := ifa.Park(ctx, "DL-001", KindCar, now)
	if err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	}
	if ticket.SpotID != 101 {
		t.Errorf("Expected spot 101, got %d", ticket.SpotID)
	}

	found, ok := ifa.FindVehicle(ctx, "DL-001")
	if !ok {
		t.Error("Expected to find parked vehicle")
	}
	if found.ID != ticket.ID {
		t.Errorf("Expected ticket %d, got %d", ticket.ID, found.ID)
	}

	st := ifa.Status(ctx)
	if st.OpenTickets != 1 {
		t.Errorf("Expected 1 open ticket, got %d", st.OpenTickets)
	}

	receipt, err := ifa.Unpark(ctx, ticket.ID, now.Add(5*time.Minute), 2.0)
	if err != nil {
		t.Errorf("Unexpected error: %s", err.Error())
	}
	if receipt.Fee != 10.0 {
		t.Errorf("Expected fee 10.0, got %.2f", receipt.Fee)
	}

	st = ifa.Status(ctx)
	if st.FreeSpots != 1 {
		t.Errorf("Expected 1 free spot, got %d", st.FreeSpots)
	}
}
