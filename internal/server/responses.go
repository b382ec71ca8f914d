package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/facility"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type AddSpotRequest struct {
	FloorIndex int    `json:"floor_index"`
	SpotID     int    `json:"spot_id"`
	Kind       string `json:"kind"`
}

type ParkRequest struct {
	VehicleID string `json:"vehicle_id"`
	Kind      string `json:"kind"`
}

type UnparkRequest struct {
	TicketID int64 `json:"ticket_id"`
	// Rate is currency per minute; omitted or zero falls back to the
	// server's default rate.
	Rate float64 `json:"rate,omitempty"`
}

type TicketResponse struct {
	TicketID        int64   `json:"ticket_id"`
	VehicleID       string  `json:"vehicle_id"`
	SpotID          int     `json:"spot_id"`
	OpenedAt        string  `json:"opened_at"`
	ClosedAt        string  `json:"closed_at,omitempty"`
	DurationMinutes int64   `json:"duration_minutes,omitempty"`
	Fee             float64 `json:"fee,omitempty"`
}

func ticketResponse(t facility.Ticket) TicketResponse {
	resp := TicketResponse{
		TicketID:  t.ID,
		VehicleID: t.VehicleID,
		SpotID:    t.SpotID,
		OpenedAt:  t.OpenedAt.UTC().Format(time.RFC3339),
	}
	if t.Closed() {
		resp.ClosedAt = t.ClosedAt.UTC().Format(time.RFC3339)
		resp.DurationMinutes = t.DurationMinutes
		resp.Fee = t.Fee
	}
	return resp
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
