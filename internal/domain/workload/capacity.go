// Package workload turns a project's resources and task assignments into
// per-resource usage records: how much work each resource carries in total
// and whether it is ever booked beyond its capacity at the same time.
package workload

import "math"

// Capacity normalization constants.
const (
	defaultCapacity = 1.0
	// Raw maxUnits above this are legacy percentages (150 means 150%).
	percentThreshold = 10.0
)

// EffectiveCapacity normalizes a raw maxUnits figure to a unit fraction.
// Zero and negative values pass through unchanged; NaN and infinities are
// treated as unset.
func EffectiveCapacity(maxUnits *float64) float64 {
	if maxUnits == nil || math.IsNaN(*maxUnits) || math.IsInf(*maxUnits, 0) {
		return defaultCapacity
	}
	if *maxUnits > percentThreshold {
		return *maxUnits / 100
	}
	return *maxUnits
}
