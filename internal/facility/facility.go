package facility

import (
	"fmt"
	"sync"
	"time"
)

// Facility composes the spot catalog, allocation strategy, and ticket ledger
// behind a single invariant-preserving boundary. Park and Unpark each run as
// one critical section over the catalog/ledger pair, so a spot is never
// double-assigned and a ticket is never billed twice no matter how many
// callers race.
type Facility struct {
	mu       sync.Mutex
	catalog  *SpotCatalog
	strategy AllocationStrategy
	ledger   *TicketLedger
}

// NewFacility constructs an empty facility. A nil strategy defaults to
// FirstFit.
func NewFacility(strategy AllocationStrategy) *Facility {
	if strategy == nil {
		strategy = FirstFit{}
	}
	return &Facility{
		catalog:  NewSpotCatalog(),
		strategy: strategy,
		ledger:   NewTicketLedger(),
	}
}

// AddFloor appends an empty floor and returns its index.
func (f *Facility) AddFloor() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalog.AddFloor()
}

// AddSpot registers a spot of the given kind on a floor.
func (f *Facility) AddSpot(floorIndex, id int, kind VehicleKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.catalog.AddSpot(floorIndex, id, kind)
}

// Park assigns the vehicle a free spot of the requested kind and opens a
// ticket for it. The spot is stamped occupied before the ticket is recorded;
// both happen inside the same critical section, so the catalog's occupancy
// guard cannot fire here.
func (f *Facility) Park(vehicleID string, kind VehicleKind, now time.Time) (Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ref, ok := f.strategy.Select(f.catalog.scanFree(kind))
	if !ok {
		return Ticket{}, fmt.Errorf("kind %s: %w", kind, ErrNoSpotAvailable)
	}

	if err := f.catalog.occupy(ref.SpotID, f.ledger.nextTicketID()); err != nil {
		return Ticket{}, err
	}
	return f.ledger.Open(vehicleID, ref.SpotID, now), nil
}

// Unpark closes the ticket, computes the fee at the given per-minute rate,
// and releases the spot. A release failure after a successful close means an
// invariant was already broken; it is surfaced as a consistency fault rather
// than swallowed.
func (f *Facility) Unpark(ticketID int64, now time.Time, rate float64) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	receipt, err := f.ledger.Close(ticketID, now, rate)
	if err != nil {
		return Receipt{}, err
	}
	if err := f.catalog.release(receipt.SpotID); err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// Ticket returns a copy of a ticket by id, open or closed.
func (f *Facility) Ticket(ticketID int64) (Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.Get(ticketID)
}

// FindVehicle returns the open ticket for a vehicle, if it is parked.
func (f *Facility) FindVehicle(vehicleID string) (Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledger.openTicketFor(vehicleID)
}

// SpotStatus is a read-only snapshot of one spot.
type SpotStatus struct {
	SpotID   int         `json:"spot_id"`
	Kind     VehicleKind `json:"kind"`
	Occupied bool        `json:"occupied"`
	TicketID int64       `json:"ticket_id,omitempty"`
}

// FloorStatus is a read-only snapshot of one floor in scan order.
type FloorStatus struct {
	Index int          `json:"index"`
	Spots []SpotStatus `json:"spots"`
}

// Status is a point-in-time snapshot of the whole facility.
type Status struct {
	Floors      []FloorStatus `json:"floors"`
	TotalSpots  int           `json:"total_spots"`
	FreeSpots   int           `json:"free_spots"`
	OpenTickets int           `json:"open_tickets"`
}

// Status captures floors, spots, and occupancy under the facility lock.
func (f *Facility) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := Status{
		Floors:      make([]FloorStatus, 0, len(f.catalog.floors)),
		TotalSpots:  f.catalog.spotCount(),
		OpenTickets: f.ledger.openCount(),
	}
	st.FreeSpots = st.TotalSpots - f.catalog.occupiedCount()

	for i, floor := range f.catalog.floors {
		fs := FloorStatus{Index: i, Spots: make([]SpotStatus, 0, len(floor.spots))}
		for _, s := range floor.spots {
			ticketID, occupied := s.OccupantTicketID()
			fs.Spots = append(fs.Spots, SpotStatus{
				SpotID:   s.ID,
				Kind:     s.Kind,
				Occupied: occupied,
				TicketID: ticketID,
			})
		}
		st.Floors = append(st.Floors, fs)
	}
	return st
}
