package facility

import "fmt"

// Spot is a single parking location of a fixed kind. Occupancy is tracked as
// the id of the open ticket holding the spot; zero means free. Only the
// Facility mutates occupancy, via the catalog.
type Spot struct {
	ID   int
	Kind VehicleKind

	occupantTicketID int64
}

func (s *Spot) Occupied() bool {
	return s.occupantTicketID != 0
}

// OccupantTicketID returns the open ticket holding the spot, if any.
func (s *Spot) OccupantTicketID() (int64, bool) {
	return s.occupantTicketID, s.occupantTicketID != 0
}

// Floor is an ordered grouping of spots. Insertion order defines the
// allocation scan order within the floor.
type Floor struct {
	spots []*Spot
}

// SpotRef identifies a spot to an allocation strategy without handing it
// mutable state.
type SpotRef struct {
	FloorIndex int
	SpotID     int
	Kind       VehicleKind
}

// SpotCatalog holds every floor and spot of a facility and performs the raw
// occupancy transitions. It does no locking of its own; the Facility
// serializes all access.
type SpotCatalog struct {
	floors []*Floor
	byID   map[int]*Spot
}

func NewSpotCatalog() *SpotCatalog {
	return &SpotCatalog{byID: make(map[int]*Spot)}
}

// AddFloor appends an empty floor and returns its index.
func (c *SpotCatalog) AddFloor() int {
	c.floors = append(c.floors, &Floor{})
	return len(c.floors) - 1
}

// AddSpot appends a spot of the given kind to a floor. Spot ids are
// caller-assigned and must be unique facility-wide.
func (c *SpotCatalog) AddSpot(floorIndex, id int, kind VehicleKind) error {
	if floorIndex < 0 || floorIndex >= len(c.floors) {
		return fmt.Errorf("floor %d: %w", floorIndex, ErrInvalidFloor)
	}
	if _, exists := c.byID[id]; exists {
		return fmt.Errorf("spot %d: %w", id, ErrDuplicateSpotID)
	}
	spot := &Spot{ID: id, Kind: kind}
	c.floors[floorIndex].spots = append(c.floors[floorIndex].spots, spot)
	c.byID[id] = spot
	return nil
}

// scanFree returns a pull iterator over the free spots of the given kind, in
// floor addition order then in-floor addition order. Strategies consume as
// few candidates as they need.
func (c *SpotCatalog) scanFree(kind VehicleKind) func() (SpotRef, bool) {
	floor, pos := 0, 0
	return func() (SpotRef, bool) {
		for floor < len(c.floors) {
			spots := c.floors[floor].spots
			for pos < len(spots) {
				s := spots[pos]
				pos++
				if s.Kind == kind && !s.Occupied() {
					return SpotRef{FloorIndex: floor, SpotID: s.ID, Kind: s.Kind}, true
				}
			}
			floor++
			pos = 0
		}
		return SpotRef{}, false
	}
}

// occupy marks a spot as held by the given ticket.
func (c *SpotCatalog) occupy(spotID int, ticketID int64) error {
	s, ok := c.byID[spotID]
	if !ok {
		return fmt.Errorf("spot %d: %w", spotID, ErrUnknownSpot)
	}
	if s.Occupied() {
		return fmt.Errorf("spot %d: %w", spotID, ErrSpotAlreadyOccupied)
	}
	s.occupantTicketID = ticketID
	return nil
}

// release clears a spot's occupant.
func (c *SpotCatalog) release(spotID int) error {
	s, ok := c.byID[spotID]
	if !ok {
		return fmt.Errorf("spot %d: %w", spotID, ErrUnknownSpot)
	}
	if !s.Occupied() {
		return fmt.Errorf("spot %d: %w", spotID, ErrSpotNotOccupied)
	}
	s.occupantTicketID = 0
	return nil
}

func (c *SpotCatalog) spotCount() int {
	return len(c.byID)
}

func (c *SpotCatalog) occupiedCount() int {
	n := 0
	for _, s := range c.byID {
		if s.Occupied() {
			n++
		}
	}
	return n
}
