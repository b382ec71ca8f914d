package facility

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Shell is an interactive command loop over an instrumented facility. Each
// command runs in its own span.
type Shell struct {
	facility    *InstrumentedFacility
	scanner     *bufio.Scanner
	telemetry   *TelemetryProvider
	defaultRate float64
}

func NewShell(facility *InstrumentedFacility, telemetry *TelemetryProvider, defaultRate float64) *Shell {
	return &Shell{
		facility:    facility,
		scanner:     bufio.NewScanner(os.Stdin),
		telemetry:   telemetry,
		defaultRate: defaultRate,
	}
}

func (s *Shell) Run(ctx context.Context) {
	tracer := s.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "shell.run")
	defer span.End()

	span.AddEvent("shell_started")

	for {
		if !s.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(s.scanner.Text())
		if input == "" {
			continue
		}

		cmdCtx, cmdSpan := tracer.Start(ctx, "shell.process_command",
			trace.WithAttributes(attribute.String("command.input", input)))
		s.processCommand(cmdCtx, input)
		cmdSpan.End()
	}

	span.AddEvent("shell_ended")
}

func (s *Shell) processCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "add_floor":
		s.handleAddFloor(ctx)
	case "add_spot":
		s.handleAddSpot(ctx, parts)
	case "park":
		s.handlePark(ctx, parts)
	case "unpark":
		s.handleUnpark(ctx, parts)
	case "ticket":
		s.handleTicket(parts)
	case "status":
		s.handleStatus(ctx)
	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
	}
}

func (s *Shell) handleAddFloor(ctx context.Context) {
	index := s.facility.AddFloor(ctx)
	fmt.Printf("Added floor %d\n", index)
}

func (s *Shell) handleAddSpot(ctx context.Context, parts []string) {
	if len(parts) != 4 {
		fmt.Println("Usage: add_spot <floor_index> <spot_id> <kind>")
		return
	}

	floorIndex, err := strconv.Atoi(parts[1])
	if err != nil {
		fmt.Println("Invalid floor index")
		return
	}

	spotID, err := strconv.Atoi(parts[2])
	if err != nil {
		fmt.Println("Invalid spot id")
		return
	}

	kind, err := ParseVehicleKind(parts[3])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	if err := s.facility.AddSpot(ctx, floorIndex, spotID, kind); err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Added %s spot %d on floor %d\n", kind, spotID, floorIndex)
}

func (s *Shell) handlePark(ctx context.Context, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: park <vehicle_id> <kind>")
		return
	}

	kind, err := ParseVehicleKind(parts[2])
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	ticket, err := s.facility.Park(ctx, parts[1], kind, time.Now())
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Ticket %d: spot %d\n", ticket.ID, ticket.SpotID)
}

func (s *Shell) handleUnpark(ctx context.Context, parts []string) {
	if len(parts) != 2 && len(parts) != 3 {
		fmt.Println("Usage: unpark <ticket_id> [rate]")
		return
	}

	ticketID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		fmt.Println("Invalid ticket id")
		return
	}

	rate := s.defaultRate
	if len(parts) == 3 {
		rate, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			fmt.Println("Invalid rate")
			return
		}
	}

	receipt, err := s.facility.Unpark(ctx, ticketID, time.Now(), rate)
	if err != nil {
		fmt.Printf("Error: %s\n", err.Error())
		return
	}

	fmt.Printf("Spot %d is free. Duration: %d min, fee: %.2f\n",
		receipt.SpotID, receipt.DurationMinutes, receipt.Fee)
}

func (s *Shell) handleTicket(parts []string) {
	if len(parts) != 2 {
		fmt.Println("Usage: ticket <ticket_id>")
		return
	}

	ticketID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		fmt.Println("Invalid ticket id")
		return
	}

	ticket, found := s.facility.Ticket(ticketID)
	if !found {
		fmt.Println("Not found")
		return
	}

	if ticket.Closed() {
		fmt.Printf("Ticket %d: vehicle %s, spot %d, closed, fee %.2f\n",
			ticket.ID, ticket.VehicleID, ticket.SpotID, ticket.Fee)
		return
	}
	fmt.Printf("Ticket %d: vehicle %s, spot %d, open since %s\n",
		ticket.ID, ticket.VehicleID, ticket.SpotID, ticket.OpenedAt.Format(time.RFC3339))
}

func (s *Shell) handleStatus(ctx context.Context) {
	st := s.facility.Status(ctx)
	if st.TotalSpots == 0 {
		fmt.Println("No spots registered")
		return
	}

	fmt.Printf("Spots: %d total, %d free, %d open tickets\n",
		st.TotalSpots, st.FreeSpots, st.OpenTickets)
	fmt.Println("Floor\tSpot\tKind\tTicket")
	for _, floor := range st.Floors {
		for _, spot := range floor.Spots {
			if spot.Occupied {
				fmt.Printf("%d\t%d\t%s\t%d\n", floor.Index, spot.SpotID, spot.Kind, spot.TicketID)
			} else {
				fmt.Printf("%d\t%d\t%s\t-\n", floor.Index, spot.SpotID, spot.Kind)
			}
		}
	}
}
