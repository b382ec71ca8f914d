package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/facility"
)

func getServiceName() string {
	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		return name
	}
	return "parking-facility-otel"
}

type Handler struct {
	facility    *facility.InstrumentedFacility
	defaultRate float64
}

func NewHandler(f *facility.InstrumentedFacility, defaultRate float64) *Handler {
	return &Handler{facility: f, defaultRate: defaultRate}
}

// statusForError maps the facility error taxonomy onto HTTP statuses.
// Consistency faults are server errors; everything else is caller-facing.
func statusForError(err error) int {
	switch {
	case errors.Is(err, facility.ErrNoSpotAvailable):
		return http.StatusConflict
	case errors.Is(err, facility.ErrUnknownTicket):
		return http.StatusNotFound
	case errors.Is(err, facility.ErrTicketAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, facility.ErrInvalidFloor), errors.Is(err, facility.ErrDuplicateSpotID):
		return http.StatusBadRequest
	case facility.IsConsistencyFault(err):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": getServiceName(),
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) AddFloor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	index := h.facility.AddFloor(ctx)

	WriteSuccess(ctx, w, "Floor added", map[string]any{
		"floor_index": index,
	})
}

func (h *Handler) AddSpot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AddSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind, err := facility.ParseVehicleKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.facility.AddSpot(ctx, req.FloorIndex, req.SpotID, kind); err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Spot added", map[string]any{
		"floor_index": req.FloorIndex,
		"spot_id":     req.SpotID,
		"kind":        kind,
	})
}

func (h *Handler) Park(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ParkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.VehicleID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Vehicle id is required")
		return
	}

	kind, err := facility.ParseVehicleKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.facility.Park(ctx, req.VehicleID, kind, time.Now())
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle parked", ticketResponse(ticket))
}

func (h *Handler) Unpark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UnparkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TicketID <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Ticket id is required")
		return
	}

	rate := req.Rate
	if rate == 0 {
		rate = h.defaultRate
	}
	if rate < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Rate must not be negative")
		return
	}

	receipt, err := h.facility.Unpark(ctx, req.TicketID, time.Now(), rate)
	if err != nil {
		WriteError(ctx, w, statusForError(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle unparked", receipt)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	st := h.facility.Status(ctx)

	WriteSuccess(ctx, w, "Status retrieved", st)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticketID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	ticket, found := h.facility.Facility.Ticket(ticketID)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", ticketResponse(ticket))
}

func (h *Handler) FindVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vehicleID := chi.URLParam(r, "vehicleID")
	if vehicleID == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Vehicle id is required")
		return
	}

	ticket, found := h.facility.FindVehicle(ctx, vehicleID)
	if !found {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not parked")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", ticketResponse(ticket))
}
