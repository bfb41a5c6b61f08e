package timeline

import "time"

const (
	// DefaultWeeks is the number of weeks shown on a chart.
	DefaultWeeks = 16
	// MaxWeeks bounds every chart frame to two years.
	MaxWeeks = 104
	// DaysPerWeek is the denominator of every overlap percentage.
	DaysPerWeek = 7
)

// Week is one column of the chart. End is Start plus six days.
type Week struct {
	Index int  `json:"index" yaml:"index"`
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// WeekStart returns the Sunday on or before d.
func WeekStart(d Date) Date {
	return d.AddDays(-int(d.Weekday() - time.Sunday))
}

// GenerateWeeks returns n contiguous weeks, the first starting on the Sunday
// on or before ref. n <= 0 yields an empty slice; n is capped at MaxWeeks.
func GenerateWeeks(ref Date, n int) []Week {
	if n <= 0 {
		return []Week{}
	}
	n = min(n, MaxWeeks)
	weeks := make([]Week, n)
	start := WeekStart(ref)
	for i := range weeks {
		weeks[i] = Week{
			Index: i,
			Start: start,
			End:   start.AddDays(DaysPerWeek - 1),
		}
		start = start.AddDays(DaysPerWeek)
	}
	return weeks
}

// Navigate moves the reference date by whole weeks.
func Navigate(ref Date, steps int) Date {
	return ref.AddDays(steps * DaysPerWeek)
}

// Contains reports whether d falls inside the week.
func (w Week) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Label renders the column header, e.g. "Jan-05".
func (w Week) Label() string {
	return w.Start.Time().Format("Jan-02")
}
