package facility

// AllocationStrategy chooses among the free, kind-compatible spots offered by
// the catalog scan. Implementations pull candidates one at a time and may
// stop early; returning false means no spot was acceptable. Strategies are
// fixed at Facility construction.
type AllocationStrategy interface {
	Select(next func() (SpotRef, bool)) (SpotRef, bool)
}

// FirstFit takes the first candidate in scan order: earliest-added floor,
// earliest-added spot.
type FirstFit struct{}

func (FirstFit) Select(next func() (SpotRef, bool)) (SpotRef, bool) {
	return next()
}
