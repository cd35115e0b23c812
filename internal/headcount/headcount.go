// Package headcount holds the weighted headcount arithmetic. Every place
// that computes a headcount (RSVP submission, snapshot aggregation, the
// backfill script) must go through Compute so stored and displayed values
// cannot drift.
package headcount

import "math"

// Weights applied per age band. Teens and children count as fractional
// adults for catering and seating purposes.
const (
	AdultWeight = 1.0
	TeenWeight  = 0.75
	ChildWeight = 0.3
)

// Compute returns the weighted headcount for the given counts. Pure and
// total: callers validate non-negativity before calling.
func Compute(adults, teens, children int) float64 {
	return float64(adults)*AdultWeight + float64(teens)*TeenWeight + float64(children)*ChildWeight
}

// Round2 rounds a headcount to two decimal places for display. Stored
// values keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
