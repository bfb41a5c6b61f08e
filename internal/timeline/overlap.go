package timeline

import "math"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date `json:"start_date" yaml:"start_date"`
	End   Date `json:"end_date" yaml:"end_date"`
}

// Valid reports whether the range is usable for a project: both ends set and
// End strictly after Start.
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && r.End.After(r.Start)
}

// Ordered reports whether both ends are set and End is not before Start. Tasks
// only need this; a single-day task is a milestone.
func (r DateRange) Ordered() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Covers reports whether other lies entirely inside r.
func (r DateRange) Covers(other DateRange) bool {
	return !other.Start.Before(r.Start) && !other.End.After(r.End)
}

// ClampTo shrinks r so it lies inside bounds while staying at least two days
// long. bounds must itself span at least two days.
func (r DateRange) ClampTo(bounds DateRange) DateRange {
	out := DateRange{Start: maxDate(r.Start, bounds.Start), End: minDate(r.End, bounds.End)}
	if !out.End.After(out.Start) {
		if out.End.Equal(bounds.Start) || out.End.Before(bounds.Start) {
			out.Start, out.End = bounds.Start, bounds.Start.AddDays(1)
		} else {
			out.Start = out.End.AddDays(-1)
		}
	}
	return out
}

// Segment is the part of a range that falls in one week.
type Segment struct {
	Percentage float64 `json:"percentage" yaml:"percentage"`
	IsStart    bool    `json:"is_start" yaml:"is_start"`
	IsEnd      bool    `json:"is_end" yaml:"is_end"`
}

// Overlap returns the fraction of w covered by r. The boolean is false when
// they do not intersect.
func Overlap(r DateRange, w Week) (Segment, bool) {
	if r.End.Before(w.Start) || r.Start.After(w.End) {
		return Segment{}, false
	}

	days := maxDate(r.Start, w.Start).DaysUntil(minDate(r.End, w.End)) + 1
	if days <= 0 {
		return Segment{}, false
	}

	pct := math.Min(100, float64(days)/DaysPerWeek*100)
	// A single-day range is drawn as a milestone filling its week.
	if r.Start.Equal(r.End) {
		pct = 100
	}

	return Segment{
		Percentage: pct,
		IsStart:    w.Contains(r.Start),
		IsEnd:      w.Contains(r.End),
	}, true
}

// Segments computes Overlap for every week; weeks without overlap are nil.
func Segments(r DateRange, weeks []Week) []*Segment {
	out := make([]*Segment, len(weeks))
	for i, w := range weeks {
		if seg, ok := Overlap(r, w); ok {
			seg := seg
			out[i] = &seg
		}
	}
	return out
}
