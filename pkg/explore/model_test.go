package explore

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msgs in order and returns the resulting model.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func texts(rows []*findingRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text
	}
	return out
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(testData(t))
	require.Equal(t, paneFindings, m.focus)
	assert.Equal(t, "42", m.details.finding.Text, "first finding is selected")

	m = send(t, m, runes("j"))
	assert.Equal(t, 1, m.findings.cursor)
	assert.Equal(t, "abc", m.details.finding.Text)

	m = send(t, m, runes("G"))
	assert.Equal(t, "xyz", m.details.finding.Text)

	m = send(t, m, runes("g"), runes("d"), runes("l"))
	assert.Equal(t, paneDetails, m.focus)
	assert.Equal(t, 1, m.details.matchCursor, "the integer finding has two matches")

	m = send(t, m, runes("l"))
	assert.Equal(t, 1, m.details.matchCursor, "cursor stops at the last match")
}

func TestModel_Sort(t *testing.T) {
	m := newModel(testData(t))
	assert.Equal(t, []string{"42", "abc", "xyz"}, texts(m.findings.rows))

	m = send(t, m, runes("s"))
	assert.Equal(t, sortByText, m.findings.sortBy)

	m = send(t, m, runes("S"))
	assert.Equal(t, []string{"xyz", "abc", "42"}, texts(m.findings.rows))

	m = send(t, m, runes("s"))
	assert.Equal(t, sortByMatches, m.findings.sortBy)
	assert.Equal(t, "42", m.findings.rows[0].Text, "most matches first when reversed")
}

func TestModel_Filters(t *testing.T) {
	m := newModel(testData(t))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	require.Equal(t, paneFilters, m.focus)
	require.True(t, m.filters.items[0].heading())
	require.Equal(t, "Rule Name", m.filters.label(m.filters.items[0]))
	require.Equal(t, "Integer", m.filters.label(m.filters.items[1]))

	m = send(t, m, runes("j"), runes("x"))
	assert.Equal(t, []string{"42"}, texts(m.findings.rows))
	assert.Equal(t, "42", m.details.finding.Text)

	m = send(t, m, runes("x"))
	assert.Len(t, m.findings.rows, 3, "toggling again clears the filter")

	m = send(t, m, runes("k"), runes("x"))
	assert.Less(t, len(m.filters.items), 9, "collapsed facet hides its values")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyF7})
	assert.False(t, m.showFilters)
	assert.Equal(t, paneFindings, m.focus, "hidden filters lose focus")
}

func TestModel_SourceOverlay(t *testing.T) {
	m := newModel(testData(t))
	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40}, runes("o"))

	assert.Equal(t, overlaySource, m.activeOverlay, "seeded files are not on disk")
	assert.Contains(t, m.overlayContent, "42")
	assert.Contains(t, m.View(), "Source (q to close)")

	m = send(t, m, runes("q"))
	assert.Equal(t, overlayNone, m.activeOverlay)
}

func TestModel_View(t *testing.T) {
	m := newModel(testData(t))
	assert.Equal(t, "Loading...", m.View())

	m = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Findings (3/3)")
	assert.Contains(t, view, "Filters")
	assert.Contains(t, view, "Integer")
	assert.Contains(t, view, "3 findings | 3 shown")

	m = send(t, m, runes("?"))
	assert.Contains(t, m.View(), "Glossa Explore")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(testData(t))
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
