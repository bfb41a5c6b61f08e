package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rpggio/gantry/internal/domain/capacity"
	"github.com/rpggio/gantry/internal/timeline"
)

// barWidth is the number of glyphs a full week of work draws.
const barWidth = 5

// Bar draws a segment as a run of block glyphs proportional to its
// percentage. A nil segment draws nothing; any overlap draws at least one glyph.
func Bar(seg *timeline.Segment) string {
	if seg == nil {
		return ""
	}
	n := int(math.Round(seg.Percentage / 100 * barWidth))
	n = max(1, min(n, barWidth))
	return strings.Repeat("█", n)
}

// Percent formats a capacity value, e.g. "75%".
func Percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func weekHeaders(first string, f capacity.Frame, extra ...string) []string {
	headers := append([]string{first}, extra...)
	for _, c := range f.Columns {
		headers = append(headers, c.Label)
	}
	return headers
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...)
}

// rangeTitle renders "title (Jan-05 .. Apr-20)".
func rangeTitle(title string, f capacity.Frame) string {
	if len(f.Columns) == 0 {
		return TitleStyle.Render(title)
	}
	first, last := f.Columns[0], f.Columns[len(f.Columns)-1]
	return TitleStyle.Render(title) + " " +
		MutedStyle.Render(fmt.Sprintf("(%s .. %s)", first.Start, last.End))
}

// capacityTable draws one row per person; each week cell is coloured by tier.
// withAvailable adds a muted row of remaining capacity under each person.
func capacityTable(f capacity.Frame, loads []capacity.PersonLoad, withAvailable bool) string {
	// tiers holds one entry per table row; nil marks an available row.
	var tiers [][]timeline.Tier
	t := newTable(weekHeaders("Person", f))
	for _, l := range loads {
		row := []string{l.Name}
		rowTiers := make([]timeline.Tier, len(l.Capacity))
		for j, c := range l.Capacity {
			row = append(row, Percent(c.Used))
			rowTiers[j] = c.Tier
		}
		t.Row(row...)
		tiers = append(tiers, rowTiers)

		if withAvailable {
			avail := []string{"  Available"}
			for _, c := range l.Capacity {
				avail = append(avail, Percent(c.Available))
			}
			t.Row(avail...)
			tiers = append(tiers, nil)
		}
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return HeaderStyle
		case row < len(tiers) && tiers[row] == nil:
			return MutedStyle
		case col == 0:
			return CellStyle
		case row < len(tiers) && col-1 < len(tiers[row]):
			return TierStyle(tiers[row][col-1])
		default:
			return CellStyle
		}
	})
	return t.String()
}

// TeamCapacity draws every person's weekly load.
func TeamCapacity(tc *capacity.TeamCapacity) string {
	loads := make([]capacity.PersonLoad, len(tc.People))
	for i, p := range tc.People {
		loads[i] = p.PersonLoad
	}

	var b strings.Builder
	b.WriteString(rangeTitle("Team capacity", tc.Frame))
	b.WriteString("\n")
	if len(loads) == 0 {
		b.WriteString(MutedStyle.Render("No people in your projects yet."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(capacityTable(tc.Frame, loads, false))
	b.WriteString("\n")
	return b.String()
}

// ProjectChart draws a project's task bars followed by its members' load.
func ProjectChart(pc *capacity.ProjectChart) string {
	var b strings.Builder
	b.WriteString(rangeTitle(pc.Project.Name, pc.Frame))
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("%s .. %s", pc.Project.StartDate, pc.Project.EndDate)))
	b.WriteString("\n")

	if len(pc.Tasks) == 0 {
		b.WriteString(MutedStyle.Render("No tasks yet."))
		b.WriteString("\n")
	} else {
		t := newTable(weekHeaders("Task", pc.Frame, "Assignee", "Done"))
		for _, bar := range pc.Tasks {
			assignee := bar.Assignee
			if assignee == "" {
				assignee = "-"
			}
			row := []string{bar.Task.Name, assignee, Percent(float64(bar.Task.Progress))}
			for _, seg := range bar.Segments {
				row = append(row, Bar(seg))
			}
			t.Row(row...)
		}
		t.StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return HeaderStyle
			case col >= 3:
				return BarStyle
			default:
				return CellStyle
			}
		})
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if len(pc.Members) > 0 {
		b.WriteString(capacityTable(pc.Frame, pc.Members, true))
		b.WriteString("\n")
	}
	return b.String()
}

// ProjectTimeline draws one bar row per visible project.
func ProjectTimeline(pt *capacity.ProjectTimeline) string {
	var b strings.Builder
	b.WriteString(rangeTitle("Projects", pt.Frame))
	b.WriteString("\n")
	if len(pt.Projects) == 0 {
		b.WriteString(MutedStyle.Render("No projects yet."))
		b.WriteString("\n")
		return b.String()
	}

	t := newTable(weekHeaders("Project", pt.Frame, "Done"))
	for _, p := range pt.Projects {
		row := []string{p.Project.Name, Percent(float64(p.Project.Progress))}
		for _, seg := range p.Segments {
			row = append(row, Bar(seg))
		}
		t.Row(row...)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return HeaderStyle
		case col >= 2:
			return BarStyle
		default:
			return CellStyle
		}
	})
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
