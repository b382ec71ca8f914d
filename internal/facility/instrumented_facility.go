package facility

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedFacility decorates a Facility with spans and metrics for every
// operation. The base Facility stays usable on its own; callers that want
// telemetry construct this wrapper instead.
type InstrumentedFacility struct {
	*Facility
	telemetry *TelemetryProvider

	parkOperations    metric.Int64Counter
	unparkOperations  metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	totalSpotsGauge   metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	revenue           metric.Float64Counter
}

func NewInstrumentedFacility(strategy AllocationStrategy, telemetry *TelemetryProvider) (*InstrumentedFacility, error) {
	meter := telemetry.Meter()

	parkOperations, err := meter.Int64Counter("park_operations_total",
		metric.WithDescription("Total number of park operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	unparkOperations, err := meter.Int64Counter("unpark_operations_total",
		metric.WithDescription("Total number of unpark operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("facility_occupancy",
		metric.WithDescription("Current number of occupied spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	totalSpotsGauge, err := meter.Int64UpDownCounter("facility_total_spots",
		metric.WithDescription("Total number of registered spots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("operation_duration_seconds",
		metric.WithDescription("Duration of facility operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Counter("facility_revenue_total",
		metric.WithDescription("Total fees charged on unpark"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedFacility{
		Facility:          NewFacility(strategy),
		telemetry:         telemetry,
		parkOperations:    parkOperations,
		unparkOperations:  unparkOperations,
		occupancyGauge:    occupancyGauge,
		totalSpotsGauge:   totalSpotsGauge,
		operationDuration: operationDuration,
		revenue:           revenue,
	}, nil
}

func (ifa *InstrumentedFacility) AddFloor(ctx context.Context) int {
	_, span := ifa.telemetry.Tracer().Start(ctx, "facility.add_floor")
	defer span.End()

	index := ifa.Facility.AddFloor()
	span.SetAttributes(attribute.Int("floor.index", index))
	return index
}

func (ifa *InstrumentedFacility) AddSpot(ctx context.Context, floorIndex, id int, kind VehicleKind) error {
	ctx, span := ifa.telemetry.Tracer().Start(ctx, "facility.add_spot",
		trace.WithAttributes(
			attribute.Int("floor.index", floorIndex),
			attribute.Int("spot.id", id),
			attribute.String("spot.kind", kind.String()),
		))
	defer span.End()

	err := ifa.Facility.AddSpot(floorIndex, id, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.AddEvent("spot_registered")
	ifa.totalSpotsGauge.Add(ctx, 1)
	return nil
}

func (ifa *InstrumentedFacility) Park(ctx context.Context, vehicleID string, kind VehicleKind, now time.Time) (Ticket, error) {
	ctx, span := ifa.telemetry.Tracer().Start(ctx, "facility.park",
		trace.WithAttributes(
			attribute.String("vehicle.id", vehicleID),
			attribute.String("vehicle.kind", kind.String()),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("selecting_spot")

	ticket, err := ifa.Facility.Park(vehicleID, kind, now)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "park"),
		attribute.String("vehicle_kind", kind.String()),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
		ifa.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.Int("assigned_spot", ticket.SpotID),
		)
		span.SetAttributes(
			attribute.Int64("ticket.id", ticket.ID),
			attribute.Int("spot.id", ticket.SpotID),
		)
		span.AddEvent("spot_assigned", trace.WithAttributes(
			attribute.Int("spot_id", ticket.SpotID),
		))

		ifa.parkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		ifa.occupancyGauge.Add(ctx, 1)
	}

	ifa.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return ticket, err
}

func (ifa *InstrumentedFacility) Unpark(ctx context.Context, ticketID int64, now time.Time, rate float64) (Receipt, error) {
	ctx, span := ifa.telemetry.Tracer().Start(ctx, "facility.unpark",
		trace.WithAttributes(
			attribute.Int64("ticket.id", ticketID),
			attribute.Float64("rate", rate),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("closing_ticket")

	receipt, err := ifa.Facility.Unpark(ticketID, now, rate)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "unpark"),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "failed"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
		span.SetAttributes(
			attribute.Int("spot.id", receipt.SpotID),
			attribute.Int64("duration_minutes", receipt.DurationMinutes),
			attribute.Float64("fee", receipt.Fee),
		)
		span.AddEvent("spot_released")
		ifa.occupancyGauge.Add(ctx, -1)
		ifa.revenue.Add(ctx, receipt.Fee)
	}

	ifa.unparkOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	ifa.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return receipt, err
}

func (ifa *InstrumentedFacility) Status(ctx context.Context) Status {
	ctx, span := ifa.telemetry.Tracer().Start(ctx, "facility.status")
	defer span.End()

	start := time.Now()

	st := ifa.Facility.Status()

	span.SetAttributes(
		attribute.Int("total_spots", st.TotalSpots),
		attribute.Int("free_spots", st.FreeSpots),
		attribute.Int("open_tickets", st.OpenTickets),
	)

	ifa.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("operation", "status"),
		attribute.String("status", "success"),
	))

	return st
}

func (ifa *InstrumentedFacility) FindVehicle(ctx context.Context, vehicleID string) (Ticket, bool) {
	_, span := ifa.telemetry.Tracer().Start(ctx, "facility.find_vehicle",
		trace.WithAttributes(attribute.String("vehicle.id", vehicleID)))
	defer span.End()

	ticket, found := ifa.Facility.FindVehicle(vehicleID)
	if found {
		span.AddEvent("vehicle_found", trace.WithAttributes(
			attribute.Int64("ticket_id", ticket.ID),
			attribute.Int("spot_id", ticket.SpotID),
		))
	} else {
		span.AddEvent("vehicle_not_found")
	}
	return ticket, found
}
