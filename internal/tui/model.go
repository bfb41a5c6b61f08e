// Package tui is an interactive week pager over a rendered chart.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rpggio/gantry/internal/render"
	"github.com/rpggio/gantry/internal/timeline"
)

// loadTimeout bounds a single chart fetch.
const loadTimeout = 10 * time.Second

// Source renders the chart for the frame starting at ref.
type Source func(ctx context.Context, ref timeline.Date, weeks int) (string, error)

// loadedMsg carries a rendered chart back to the model. ref identifies the
// request so late answers for a page the user already left are dropped.
type loadedMsg struct {
	ref  timeline.Date
	body string
	err  error
}

// Model is the pager state.
type Model struct {
	title  string
	source Source
	today  func() timeline.Date

	ref     timeline.Date
	weeks   int
	body    string
	err     error
	loading bool

	help   help.Model
	width  int
	height int
}

// NewModel creates a pager starting at the week containing ref.
func NewModel(title string, source Source, ref timeline.Date, weeks int) Model {
	if ref.IsZero() {
		ref = timeline.Today()
	}
	return Model{
		title:   title,
		source:  source,
		today:   timeline.Today,
		ref:     timeline.WeekStart(ref),
		weeks:   weeks,
		loading: true,
		help:    help.New(),
	}
}

// Reference returns the first day of the page being shown.
func (m Model) Reference() timeline.Date {
	return m.ref
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ref, weeks, source := m.ref, m.weeks, m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		body, err := source(ctx, ref, weeks)
		return loadedMsg{ref: ref, body: body, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		if !msg.ref.Equal(m.ref) {
			return m, nil
		}
		m.loading = false
		m.body, m.err = msg.body, msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Prev):
			return m.goTo(timeline.Navigate(m.ref, -1))
		case key.Matches(msg, keys.Next):
			return m.goTo(timeline.Navigate(m.ref, 1))
		case key.Matches(msg, keys.Today):
			return m.goTo(timeline.WeekStart(m.today()))
		case key.Matches(msg, keys.Refresh):
			return m.goTo(m.ref)
		}
	}
	return m, nil
}

func (m Model) goTo(ref timeline.Date) (tea.Model, tea.Cmd) {
	m.ref = ref
	m.loading = true
	return m, m.load()
}

func (m Model) View() string {
	header := render.TitleStyle.Render(m.title) + " " +
		render.MutedStyle.Render(fmt.Sprintf("week of %s", m.ref))

	var body string
	switch {
	case m.err != nil:
		body = lipgloss.NewStyle().Foreground(render.OverColor).Render("Error: " + m.err.Error())
	case m.body == "" && m.loading:
		body = render.MutedStyle.Render("Loading...")
	default:
		body = m.body
	}
	if m.loading && m.body != "" {
		header += " " + render.MutedStyle.Render("(loading)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, m.help.View(keys))
}
