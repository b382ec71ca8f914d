package facility

import "errors"

var (
	// ErrNoSpotAvailable is returned by Park when no free spot matches the
	// requested kind. Expected under load; callers decide whether to retry.
	ErrNoSpotAvailable = errors.New("no spot available")

	// ErrUnknownTicket is returned by Unpark for a ticket id that was never
	// issued.
	ErrUnknownTicket = errors.New("unknown ticket")

	// ErrTicketAlreadyClosed is returned by Unpark when the ticket has
	// already been closed. The recorded fee is never recomputed.
	ErrTicketAlreadyClosed = errors.New("ticket already closed")

	// ErrInvalidFloor is returned by AddSpot for an out-of-range floor index.
	ErrInvalidFloor = errors.New("invalid floor index")

	// ErrDuplicateSpotID is returned by AddSpot when the spot id is already
	// in use anywhere in the facility.
	ErrDuplicateSpotID = errors.New("duplicate spot id")

	// ErrSpotAlreadyOccupied and ErrSpotNotOccupied guard catalog occupancy
	// transitions. Under correct serialization by the Facility they are
	// unreachable; observing one means an invariant was already broken.
	ErrSpotAlreadyOccupied = errors.New("spot already occupied")
	ErrSpotNotOccupied     = errors.New("spot not occupied")

	// ErrUnknownSpot guards catalog lookups by id, unreachable for the same
	// reason.
	ErrUnknownSpot = errors.New("unknown spot")
)

// IsConsistencyFault reports whether err indicates a broken internal
// invariant rather than caller misuse. These surface as server faults, not
// user errors.
func IsConsistencyFault(err error) bool {
	return errors.Is(err, ErrSpotAlreadyOccupied) ||
		errors.Is(err, ErrSpotNotOccupied) ||
		errors.Is(err, ErrUnknownSpot)
}
