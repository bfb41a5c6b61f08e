package timeline

import (
	"math"
	"sort"
)

const (
	// DefaultAllocation is the share of a week one task consumes when it
	// covers the whole week.
	DefaultAllocation = 50.0

	// HighThreshold is the last capacity value still classified normal.
	HighThreshold = 80.0
	// FullThreshold is the last capacity value still classified high.
	FullThreshold = 100.0
)

// Tier is the colour band of a capacity value.
type Tier string

const (
	TierNormal Tier = "normal"
	TierHigh   Tier = "high"
	TierOver   Tier = "over"
)

// Classify maps a raw, unclamped capacity percentage to its tier. Boundaries
// belong to the lower tier.
func Classify(pct float64) Tier {
	switch {
	case pct > FullThreshold:
		return TierOver
	case pct > HighThreshold:
		return TierHigh
	default:
		return TierNormal
	}
}

// Assignment is one piece of work loading a person.
type Assignment struct {
	Range      DateRange
	Allocation float64
}

// Capacity is a person's load for one week. Used is the raw sum and drives
// Tier; Display is clamped for drawing bars.
type Capacity struct {
	Used      float64 `json:"used" yaml:"used"`
	Display   float64 `json:"display" yaml:"display"`
	Available float64 `json:"available" yaml:"available"`
	Tier      Tier    `json:"tier" yaml:"tier"`
}

// NewCapacity derives the display values from a raw load.
func NewCapacity(used float64) Capacity {
	return Capacity{
		Used:      used,
		Display:   math.Min(FullThreshold, used),
		Available: math.Max(0, FullThreshold-used),
		Tier:      Classify(used),
	}
}

// ContributionOf returns the load a single assignment puts on week w.
func ContributionOf(a Assignment, w Week) float64 {
	seg, ok := Overlap(a.Range, w)
	if !ok {
		return 0
	}
	return seg.Percentage * a.Allocation / 100
}

// AggregateCapacity sums the contributions of all assignments for week w.
// Contributions are summed in sorted order so the result does not depend on
// the order of as.
func AggregateCapacity(as []Assignment, w Week) Capacity {
	parts := make([]float64, 0, len(as))
	for _, a := range as {
		if c := ContributionOf(a, w); c > 0 {
			parts = append(parts, c)
		}
	}
	sort.Float64s(parts)

	var used float64
	for _, p := range parts {
		used += p
	}
	return NewCapacity(used)
}

// CapacitySeries computes AggregateCapacity for every week.
func CapacitySeries(as []Assignment, weeks []Week) []Capacity {
	out := make([]Capacity, len(weeks))
	for i, w := range weeks {
		out[i] = AggregateCapacity(as, w)
	}
	return out
}
