package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/facility"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	telemetry, err := facility.NewTelemetryProvider()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			t.Logf("telemetry shutdown: %v", err)
		}
	})

	f, err := facility.NewInstrumentedFacility(facility.FirstFit{}, telemetry)
	require.NoError(t, err)

	handler := NewHandler(f, 2.0)

	r := chi.NewRouter()
	r.Route("/api/facility", func(r chi.Router) {
		r.Post("/floors", handler.AddFloor)
		r.Post("/spots", handler.AddSpot)
		r.Post("/park", handler.Park)
		r.Post("/unpark", handler.Unpark)
		r.Get("/status", handler.GetStatus)
		r.Get("/tickets/{id}", handler.GetTicket)
		r.Get("/vehicles/{vehicleID}", handler.FindVehicle)
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func setupSpots(t *testing.T, r http.Handler) {
	t.Helper()
	rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/floors", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, spot := range []AddSpotRequest{
		{FloorIndex: 0, SpotID: 101, Kind: "car"},
		{FloorIndex: 0, SpotID: 102, Kind: "bike"},
	} {
		rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/spots", spot)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestParkAndUnparkFlow(t *testing.T) {
	r := newTestRouter(t)
	setupSpots(t, r)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/facility/park", ParkRequest{VehicleID: "DL-001", Kind: "car"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	require.Equal(t, float64(1), data["ticket_id"])
	require.Equal(t, float64(101), data["spot_id"])

	rec, resp = doJSON(t, r, http.MethodPost, "/api/facility/unpark", UnparkRequest{TicketID: 1, Rate: 2.0})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	receipt := resp.Data.(map[string]any)
	require.Equal(t, float64(101), receipt["spot_id"])
}

func TestParkConflictWhenFull(t *testing.T) {
	r := newTestRouter(t)
	setupSpots(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/park", ParkRequest{VehicleID: "DL-001", Kind: "car"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, r, http.MethodPost, "/api/facility/park", ParkRequest{VehicleID: "DL-002", Kind: "car"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.False(t, resp.Success)
}

func TestUnparkErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	setupSpots(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/unpark", UnparkRequest{TicketID: 42})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/park", ParkRequest{VehicleID: "DL-001", Kind: "car"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/unpark", UnparkRequest{TicketID: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/unpark", UnparkRequest{TicketID: 1})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddSpotValidation(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/spots", AddSpotRequest{FloorIndex: 0, SpotID: 101, Kind: "car"})
	require.Equal(t, http.StatusBadRequest, rec.Code, "no floor yet")

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/floors", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/spots", AddSpotRequest{FloorIndex: 0, SpotID: 101, Kind: "hovercraft"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/spots", AddSpotRequest{FloorIndex: 0, SpotID: 101, Kind: "car"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/facility/spots", AddSpotRequest{FloorIndex: 0, SpotID: 101, Kind: "bike"})
	require.Equal(t, http.StatusBadRequest, rec.Code, "duplicate spot id")
}

func TestGetTicketAndFindVehicle(t *testing.T) {
	r := newTestRouter(t)
	setupSpots(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/park", ParkRequest{VehicleID: "DL-001", Kind: "car"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, r, http.MethodGet, "/api/facility/tickets/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ticket := resp.Data.(map[string]any)
	require.Equal(t, "DL-001", ticket["vehicle_id"])

	rec, resp = doJSON(t, r, http.MethodGet, "/api/facility/vehicles/DL-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ticket = resp.Data.(map[string]any)
	require.Equal(t, float64(1), ticket["ticket_id"])

	rec, _ = doJSON(t, r, http.MethodGet, "/api/facility/tickets/99", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, "/api/facility/vehicles/ZZ-999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestRouter(t)
	setupSpots(t, r)

	for i, kind := range []string{"car", "bike"} {
		rec, _ := doJSON(t, r, http.MethodPost, "/api/facility/park",
			ParkRequest{VehicleID: fmt.Sprintf("DL-%03d", i+1), Kind: kind})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := doJSON(t, r, http.MethodGet, "/api/facility/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	st := resp.Data.(map[string]any)
	require.Equal(t, float64(2), st["total_spots"])
	require.Equal(t, float64(0), st["free_spots"])
	require.Equal(t, float64(2), st["open_tickets"])
}
