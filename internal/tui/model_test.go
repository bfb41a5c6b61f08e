package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/gantry/internal/timeline"
)

type call struct {
	ref   timeline.Date
	weeks int
}

func fakeSource(calls *[]call) Source {
	return func(_ context.Context, ref timeline.Date, weeks int) (string, error) {
		*calls = append(*calls, call{ref, weeks})
		return "chart " + ref.String(), nil
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step applies msg and runs the resulting command once, feeding its message back.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(Model)
	}
	return m
}

func TestModel_Navigation(t *testing.T) {
	var calls []call
	m := NewModel("Team", fakeSource(&calls), timeline.MustParseDate("2025-01-08"), 4)
	m.today = func() timeline.Date { return timeline.MustParseDate("2025-03-04") }

	require.Equal(t, "2025-01-05", m.Reference().String())

	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.Equal(t, "chart 2025-01-05", m.body)
	require.False(t, m.loading)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, "2025-01-12", m.Reference().String())

	m = step(t, m, runes("l"))
	require.Equal(t, "2025-01-19", m.Reference().String())

	m = step(t, m, runes("h"))
	m = step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, "2025-01-05", m.Reference().String())

	m = step(t, m, runes("t"))
	require.Equal(t, "2025-03-02", m.Reference().String())
	require.Equal(t, "chart 2025-03-02", m.body)

	for _, c := range calls {
		require.Equal(t, 4, c.weeks)
	}
	require.Len(t, calls, 6)
}

func TestModel_DropsStaleLoads(t *testing.T) {
	var calls []call
	m := NewModel("Team", fakeSource(&calls), timeline.MustParseDate("2025-01-05"), 2)

	stale := loadedMsg{ref: timeline.MustParseDate("2024-12-29"), body: "old"}
	next, _ := m.Update(stale)
	m = next.(Model)
	require.Empty(t, m.body)
	require.True(t, m.loading)
}

func TestModel_ErrorAndQuit(t *testing.T) {
	m := NewModel("Team", func(context.Context, timeline.Date, int) (string, error) {
		return "", errors.New("boom")
	}, timeline.MustParseDate("2025-01-05"), 2)

	next, _ := m.Update(m.Init()())
	m = next.(Model)
	require.Contains(t, m.View(), "boom")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}
