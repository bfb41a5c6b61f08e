// Package render draws charts for the terminal and encodes them as JSON or YAML.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rpggio/gantry/internal/timeline"
)

// Tier colours
var (
	NormalColor = lipgloss.Color("#95E1A3") // green
	HighColor   = lipgloss.Color("#FFE66D") // yellow
	OverColor   = lipgloss.Color("#FF6B6B") // red

	Primary   = lipgloss.Color("#4ECDC4")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	CellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	BarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(Primary)
)

// TierStyle returns the cell style for a capacity tier.
func TierStyle(t timeline.Tier) lipgloss.Style {
	switch t {
	case timeline.TierOver:
		return CellStyle.Foreground(OverColor).Bold(true)
	case timeline.TierHigh:
		return CellStyle.Foreground(HighColor)
	default:
		return CellStyle.Foreground(NormalColor)
	}
}
