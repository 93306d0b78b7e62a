package services

import "time"

// BisectionIterations is the fixed number of halvings used to locate a
// lit/occluded transition. After 15 halvings the remaining interval is
// (end-start)/2^15, sub-second for any normal daylight window. The
// count is fixed on purpose: an epsilon-based convergence check would
// change observable precision and timing.
const BisectionIterations = 15

// FindTransition bisects [start, end] for the single lit/occluded
// transition of isLitAt, assumed monotonic across the interval.
//
// With findRisingEdge true it returns the earliest lit instant (the
// topographic sunrise within [sunrise, solarNoon]); with false, the
// latest lit instant (the topographic sunset within [solarNoon,
// sunset]). It never fails: when the oracle is constant across the
// whole interval (polar day or night) an interval endpoint comes back,
// a documented approximation rather than an error.
func FindTransition(start, end time.Time, findRisingEdge bool, isLitAt func(time.Time) bool) time.Time {
	lo, hi := start, end

	for i := 0; i < BisectionIterations; i++ {
		mid := lo.Add(hi.Sub(lo) / 2)
		if findRisingEdge {
			// Seeking the earliest lit instant: a lit midpoint moves
			// the lit boundary down, an occluded one moves it up.
			if isLitAt(mid) {
				hi = mid
			} else {
				lo = mid
			}
		} else {
			// Seeking the latest lit instant approaching sunset.
			if isLitAt(mid) {
				lo = mid
			} else {
				hi = mid
			}
		}
	}

	if findRisingEdge {
		return hi
	}
	return lo
}
