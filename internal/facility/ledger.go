package facility

import (
	"fmt"
	"math"
	"time"
)

// Ticket records one parking session. A ticket is Open until closed exactly
// once; ClosedAt's zero value marks an open ticket. Tickets hold identifiers,
// not live references, so spot state never leaks into ledger state.
type Ticket struct {
	ID        int64
	VehicleID string
	SpotID    int
	OpenedAt  time.Time
	ClosedAt  time.Time
	// DurationMinutes and Fee are set on close and immutable afterwards.
	DurationMinutes int64
	Fee             float64
}

func (t Ticket) Closed() bool {
	return !t.ClosedAt.IsZero()
}

// Receipt summarizes a closed parking session.
type Receipt struct {
	TicketID        int64   `json:"ticket_id"`
	VehicleID       string  `json:"vehicle_id"`
	SpotID          int     `json:"spot_id"`
	DurationMinutes int64   `json:"duration_minutes"`
	Fee             float64 `json:"fee"`
}

// TicketLedger owns ticket identity and the open/closed lifecycle. Ids are
// strictly increasing for the lifetime of the ledger and never reused, even
// after closure. Like the catalog it does no locking; the Facility does.
type TicketLedger struct {
	lastID  int64
	tickets map[int64]*Ticket
}

func NewTicketLedger() *TicketLedger {
	return &TicketLedger{tickets: make(map[int64]*Ticket)}
}

// nextTicketID reports the id the next Open call will issue. The Facility
// uses it to stamp the spot before the ticket exists.
func (l *TicketLedger) nextTicketID() int64 {
	return l.lastID + 1
}

// Open issues the next ticket id and records an open ticket. It cannot fail;
// the caller has already reserved the spot.
func (l *TicketLedger) Open(vehicleID string, spotID int, now time.Time) Ticket {
	l.lastID++
	t := &Ticket{
		ID:        l.lastID,
		VehicleID: vehicleID,
		SpotID:    spotID,
		OpenedAt:  now,
	}
	l.tickets[t.ID] = t
	return *t
}

// Close transitions a ticket to Closed and computes its fee. Duration is the
// elapsed time rounded up to whole minutes, clamped at zero if now precedes
// OpenedAt (clock skew is not an error). rate is currency per minute,
// supplied per call so pricing policy stays with the caller.
func (l *TicketLedger) Close(ticketID int64, now time.Time, rate float64) (Receipt, error) {
	t, ok := l.tickets[ticketID]
	if !ok {
		return Receipt{}, fmt.Errorf("ticket %d: %w", ticketID, ErrUnknownTicket)
	}
	if t.Closed() {
		return Receipt{}, fmt.Errorf("ticket %d: %w", ticketID, ErrTicketAlreadyClosed)
	}

	elapsed := now.Sub(t.OpenedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := int64(math.Ceil(elapsed.Minutes()))

	t.ClosedAt = now
	t.DurationMinutes = minutes
	t.Fee = float64(minutes) * rate

	return Receipt{
		TicketID:        t.ID,
		VehicleID:       t.VehicleID,
		SpotID:          t.SpotID,
		DurationMinutes: t.DurationMinutes,
		Fee:             t.Fee,
	}, nil
}

// Get returns a copy of the ticket, open or closed.
func (l *TicketLedger) Get(ticketID int64) (Ticket, bool) {
	t, ok := l.tickets[ticketID]
	if !ok {
		return Ticket{}, false
	}
	return *t, true
}

// openTicketFor scans open tickets for the given vehicle.
func (l *TicketLedger) openTicketFor(vehicleID string) (Ticket, bool) {
	for _, t := range l.tickets {
		if !t.Closed() && t.VehicleID == vehicleID {
			return *t, true
		}
	}
	return Ticket{}, false
}

func (l *TicketLedger) openCount() int {
	n := 0
	for _, t := range l.tickets {
		if !t.Closed() {
			n++
		}
	}
	return n
}
