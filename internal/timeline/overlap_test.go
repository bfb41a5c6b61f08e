package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func week(start string) Week {
	s := MustParseDate(start)
	return Week{Start: s, End: s.AddDays(6)}
}

func span(start, end string) DateRange {
	return DateRange{Start: MustParseDate(start), End: MustParseDate(end)}
}

func TestOverlap(t *testing.T) {
	w := week("2025-01-05")

	cases := []struct {
		name    string
		r       DateRange
		ok      bool
		pct     float64
		isStart bool
		isEnd   bool
	}{
		{"full week", span("2025-01-05", "2025-01-11"), true, 100, true, true},
		{"covers week", span("2024-12-01", "2025-02-01"), true, 100, false, false},
		{"weekdays", span("2025-01-06", "2025-01-10"), true, 5.0 / 7 * 100, true, true},
		{"starts mid week", span("2025-01-09", "2025-01-31"), true, 3.0 / 7 * 100, true, false},
		{"ends mid week", span("2024-12-20", "2025-01-06"), true, 2.0 / 7 * 100, false, true},
		{"ends on first day", span("2024-12-20", "2025-01-05"), true, 1.0 / 7 * 100, false, true},
		{"before", span("2024-12-20", "2025-01-04"), false, 0, false, false},
		{"after", span("2025-01-12", "2025-01-20"), false, 0, false, false},
		{"single day", span("2025-01-08", "2025-01-08"), true, 100, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seg, ok := Overlap(tc.r, w)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			require.InDelta(t, tc.pct, seg.Percentage, 1e-9)
			require.Equal(t, tc.isStart, seg.IsStart)
			require.Equal(t, tc.isEnd, seg.IsEnd)
		})
	}
}

func TestOverlap_PercentageBounds(t *testing.T) {
	weeks := GenerateWeeks(MustParseDate("2024-12-01"), 12)
	r := span("2024-12-04", "2025-02-13")
	for _, w := range weeks {
		seg, ok := Overlap(r, w)
		if !ok {
			continue
		}
		require.Greater(t, seg.Percentage, 0.0)
		require.LessOrEqual(t, seg.Percentage, 100.0)
	}
}

func TestOverlap_InvertedRange(t *testing.T) {
	_, ok := Overlap(span("2025-01-09", "2025-01-07"), week("2025-01-05"))
	require.False(t, ok)
}

func TestSegments_SingleDayHitsOneWeek(t *testing.T) {
	weeks := GenerateWeeks(MustParseDate("2024-12-20"), 4)
	segs := Segments(span("2025-01-01", "2025-01-01"), weeks)
	require.Len(t, segs, 4)

	hits := 0
	for i, s := range segs {
		if s == nil {
			continue
		}
		hits++
		require.Equal(t, 2, i)
		require.Equal(t, 100.0, s.Percentage)
		require.True(t, s.IsStart)
		require.True(t, s.IsEnd)
	}
	require.Equal(t, 1, hits)
}

func TestDateRange_Valid(t *testing.T) {
	require.True(t, span("2025-01-01", "2025-01-02").Valid())
	require.False(t, span("2025-01-01", "2025-01-01").Valid())
	require.False(t, span("2025-01-02", "2025-01-01").Valid())
	require.False(t, DateRange{Start: MustParseDate("2025-01-01")}.Valid())
}

func TestDateRange_Ordered(t *testing.T) {
	require.True(t, span("2025-01-01", "2025-01-02").Ordered())
	require.True(t, span("2025-01-07", "2025-01-07").Ordered())
	require.False(t, span("2025-01-02", "2025-01-01").Ordered())
	require.False(t, DateRange{End: MustParseDate("2025-01-01")}.Ordered())
}

func TestDateRange_ClampTo(t *testing.T) {
	bounds := span("2025-01-01", "2025-01-31")

	require.Equal(t, span("2025-01-10", "2025-01-20"), span("2025-01-10", "2025-01-20").ClampTo(bounds))
	require.Equal(t, span("2025-01-20", "2025-01-31"), span("2025-01-20", "2025-02-10").ClampTo(bounds))
	require.Equal(t, span("2025-01-01", "2025-01-05"), span("2024-12-20", "2025-01-05").ClampTo(bounds))
	require.Equal(t, span("2025-01-30", "2025-01-31"), span("2025-02-03", "2025-02-10").ClampTo(bounds))
	require.Equal(t, span("2025-01-01", "2025-01-02"), span("2024-12-01", "2024-12-10").ClampTo(bounds))

	clamped := span("2025-01-31", "2025-02-10").ClampTo(bounds)
	require.True(t, clamped.Valid())
	require.True(t, bounds.Covers(clamped))
}
